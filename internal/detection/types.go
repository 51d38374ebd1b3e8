// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"errors"
	"time"

	"github.com/tomtom215/shipwatch/internal/models"
)

var (
	// ErrZoneExists is returned by Add* when the owner already has a zone.
	ErrZoneExists = errors.New("zone already exists for owner")

	// ErrZoneNotFound is returned by Update* and Remove* for an unknown owner.
	ErrZoneNotFound = errors.New("zone not found")
)

// VesselTypeLookup resolves the registry classification of a vessel.
type VesselTypeLookup interface {
	ShipType(mmsi string) models.ShipType
}

// PositionLookup reads the latest cached report of a vessel.
type PositionLookup interface {
	Get(mmsi string) (models.PositionReport, bool)
}

// RuleCache is the cache-invalidation contract the administrative layer
// must call after every successful store mutation.
type RuleCache interface {
	AddZone(z models.ZoneOfInterest) error
	UpdateZone(z models.ZoneOfInterest) error
	RemoveZone(ownerID string) error
	AddCollisionZone(z models.CollisionZone) error
	UpdateCollisionZone(z models.CollisionZone) error
	RemoveCollisionZone(ownerID string) error
}

// RuleConfig holds the collision thresholds.
type RuleConfig struct {
	// ProximityMeters flags any pair currently closer than this.
	ProximityMeters float64

	// CPAMeters flags pairs whose projected closest approach is within this
	// distance inside the look-ahead window.
	CPAMeters float64

	// LookAhead bounds the CPA projection.
	LookAhead time.Duration

	// StaleAfter ignores other vessels whose last report is further than
	// this from the reporting vessel's timestamp (report time, not wall time).
	StaleAfter time.Duration
}

// DefaultRuleConfig returns the default collision thresholds.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		ProximityMeters: 500,
		CPAMeters:       200,
		LookAhead:       10 * time.Minute,
		StaleAfter:      10 * time.Minute,
	}
}

// EngineStats is a point-in-time view of engine counters.
type EngineStats struct {
	Evaluations     int64 `json:"evaluations"`
	Violations      int64 `json:"violations"`
	ZoneViolations  int64 `json:"zone_violations"`
	CollisionAlerts int64 `json:"collision_violations"`
	ZonesOfInterest int   `json:"zones_of_interest"`
	CollisionZones  int   `json:"collision_zones"`
	Memberships     int   `json:"memberships"`
}
