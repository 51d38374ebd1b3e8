// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package cache

import (
	"math"
	"sort"
	"sync"

	"github.com/tomtom215/shipwatch/internal/geo"
)

// kmPerDegree is the approximate length of one degree of latitude.
const kmPerDegree = 111.0

type cellKey struct {
	X, Y int
}

type gridPoint struct {
	id  string
	lat float64
	lon float64
	key cellKey
}

// GridHit is one radius query result.
type GridHit struct {
	ID         string
	Lat        float64
	Lon        float64
	DistanceKm float64
}

// SpatialGrid buckets points into square lat/lon cells so that a radius
// query only scans cells overlapping the search box. Each id has exactly
// one position; Upsert moves it.
type SpatialGrid struct {
	mu       sync.RWMutex
	cellSize float64 // degrees
	cells    map[cellKey]map[string]*gridPoint
	points   map[string]*gridPoint
}

// NewSpatialGrid creates a grid with cells of roughly cellSizeKm on a side.
func NewSpatialGrid(cellSizeKm float64) *SpatialGrid {
	if cellSizeKm <= 0 {
		cellSizeKm = 10
	}
	return &SpatialGrid{
		cellSize: cellSizeKm / kmPerDegree,
		cells:    make(map[cellKey]map[string]*gridPoint),
		points:   make(map[string]*gridPoint),
	}
}

func (g *SpatialGrid) keyFor(lat, lon float64) cellKey {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return cellKey{X: int(math.Floor(lon / g.cellSize)), Y: int(math.Floor(lat / g.cellSize))}
}

// Upsert places id at (lat, lon), moving it if it already exists.
func (g *SpatialGrid) Upsert(id string, lat, lon float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := g.keyFor(lat, lon)
	if p, ok := g.points[id]; ok {
		p.lat, p.lon = lat, lon
		if p.key == key {
			return
		}
		g.detachLocked(p)
		p.key = key
		g.attachLocked(p)
		return
	}

	p := &gridPoint{id: id, lat: lat, lon: lon, key: key}
	g.points[id] = p
	g.attachLocked(p)
}

// Remove deletes id from the grid.
func (g *SpatialGrid) Remove(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.points[id]
	if !ok {
		return false
	}
	g.detachLocked(p)
	delete(g.points, id)
	return true
}

// QueryNearby returns points within radiusKm of (lat, lon), nearest first.
func (g *SpatialGrid) QueryNearby(lat, lon, radiusKm float64) []GridHit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	span := int(math.Ceil(radiusKm/kmPerDegree/g.cellSize)) + 1
	center := g.keyFor(lat, lon)

	var hits []GridHit
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			for _, p := range g.cells[cellKey{X: center.X + dx, Y: center.Y + dy}] {
				d := geo.DistanceKm(lat, lon, p.lat, p.lon)
				if d <= radiusKm {
					hits = append(hits, GridHit{ID: p.id, Lat: p.lat, Lon: p.lon, DistanceKm: d})
				}
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].DistanceKm != hits[j].DistanceKm {
			return hits[i].DistanceKm < hits[j].DistanceKm
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// Size returns the number of indexed points.
func (g *SpatialGrid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.points)
}

// NumCells returns the number of non-empty cells.
func (g *SpatialGrid) NumCells() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

func (g *SpatialGrid) attachLocked(p *gridPoint) {
	cell, ok := g.cells[p.key]
	if !ok {
		cell = make(map[string]*gridPoint, 4)
		g.cells[p.key] = cell
	}
	cell[p.id] = p
}

func (g *SpatialGrid) detachLocked(p *gridPoint) {
	cell, ok := g.cells[p.key]
	if !ok {
		return
	}
	delete(cell, p.id)
	if len(cell) == 0 {
		delete(g.cells, p.key)
	}
}
