// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package cache

import (
	"sort"
	"sync"

	"github.com/spaolacci/murmur3"

	"github.com/tomtom215/shipwatch/internal/models"
)

// DefaultShardCount is used when NewPositionCache gets a non-positive count.
const DefaultShardCount = 16

type positionShard struct {
	mu    sync.RWMutex
	items map[string]models.PositionReport
}

// PositionCache maps MMSI to the most recent report for that vessel.
type PositionCache struct {
	shards []*positionShard
	grid   *SpatialGrid
}

// NewPositionCache creates a cache with shardCount shards and a spatial
// index with cells of gridCellKm.
func NewPositionCache(shardCount int, gridCellKm float64) *PositionCache {
	if shardCount <= 0 {
		shardCount = DefaultShardCount
	}
	shards := make([]*positionShard, shardCount)
	for i := range shards {
		shards[i] = &positionShard{items: make(map[string]models.PositionReport)}
	}
	return &PositionCache{shards: shards, grid: NewSpatialGrid(gridCellKm)}
}

func (c *PositionCache) shardFor(mmsi string) *positionShard {
	return c.shards[murmur3.Sum32([]byte(mmsi))%uint32(len(c.shards))] //nolint:gosec // shard count is small and positive
}

// Upsert stores r if the cache holds nothing for the vessel or holds an
// older report. A report with an equal or older timestamp is ignored.
// Returns true when r became the latest.
func (c *PositionCache) Upsert(r models.PositionReport) bool {
	s := c.shardFor(r.MMSI)
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.items[r.MMSI]; ok && cur.Timestamp >= r.Timestamp {
		return false
	}
	s.items[r.MMSI] = r
	c.grid.Upsert(r.MMSI, r.Latitude, r.Longitude)
	return true
}

// Load seeds the cache, typically with the latest rows from the store at startup.
func (c *PositionCache) Load(reports []models.PositionReport) int {
	n := 0
	for _, r := range reports {
		if c.Upsert(r) {
			n++
		}
	}
	return n
}

// Get returns the latest report for mmsi.
func (c *PositionCache) Get(mmsi string) (models.PositionReport, bool) {
	s := c.shardFor(mmsi)
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[mmsi]
	return r, ok
}

// Len returns the number of vessels in the cache.
func (c *PositionCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Snapshot returns every cached report sorted by MMSI. Shards are read one
// at a time, so the result is consistent per vessel, not globally.
func (c *PositionCache) Snapshot() []models.PositionReport {
	out := make([]models.PositionReport, 0, c.Len())
	for _, s := range c.shards {
		s.mu.RLock()
		for _, r := range s.items {
			out = append(out, r)
		}
		s.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MMSI < out[j].MMSI })
	return out
}

// Stats summarizes the cache contents.
func (c *PositionCache) Stats() models.CacheStats {
	var st models.CacheStats
	for _, s := range c.shards {
		s.mu.RLock()
		for _, r := range s.items {
			st.Vessels++
			if r.IsMoving() {
				st.Moving++
			}
			if st.OldestTimestamp == 0 || r.Timestamp < st.OldestTimestamp {
				st.OldestTimestamp = r.Timestamp
			}
			if r.Timestamp > st.NewestTimestamp {
				st.NewestTimestamp = r.Timestamp
			}
		}
		s.mu.RUnlock()
	}
	st.Stationary = st.Vessels - st.Moving
	return st
}

// Nearby returns the latest reports of vessels within radiusKm of (lat, lon), nearest first.
func (c *PositionCache) Nearby(lat, lon, radiusKm float64) []models.PositionReport {
	hits := c.grid.QueryNearby(lat, lon, radiusKm)
	out := make([]models.PositionReport, 0, len(hits))
	for _, h := range hits {
		if r, ok := c.Get(h.ID); ok {
			out = append(out, r)
		}
	}
	return out
}
