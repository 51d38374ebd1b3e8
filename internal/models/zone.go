// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package models

import "time"

// ConstraintKind identifies one of the closed set of zone constraints.
type ConstraintKind string

const (
	// ConstraintSpeedAbove matches while SOG is strictly above the threshold (knots).
	ConstraintSpeedAbove ConstraintKind = "speed_above"

	// ConstraintSpeedBelow matches while SOG is strictly below the threshold (knots).
	ConstraintSpeedBelow ConstraintKind = "speed_below"

	// ConstraintZoneEntry fires once when a vessel crosses into the zone.
	ConstraintZoneEntry ConstraintKind = "zone_entry"

	// ConstraintZoneExit fires once when a vessel crosses out of the zone.
	ConstraintZoneExit ConstraintKind = "zone_exit"

	// ConstraintForbiddenVesselType matches vessels of the given ShipType.
	ConstraintForbiddenVesselType ConstraintKind = "forbidden_vessel_type"

	// ConstraintUnwantedNavStatus matches the given navigational status code.
	ConstraintUnwantedNavStatus ConstraintKind = "unwanted_nav_status"
)

// ConstraintKinds lists every valid kind, in documentation order.
var ConstraintKinds = []ConstraintKind{
	ConstraintSpeedAbove,
	ConstraintSpeedBelow,
	ConstraintZoneEntry,
	ConstraintZoneExit,
	ConstraintForbiddenVesselType,
	ConstraintUnwantedNavStatus,
}

// Valid reports whether k is a known constraint kind.
func (k ConstraintKind) Valid() bool {
	for _, known := range ConstraintKinds {
		if k == known {
			return true
		}
	}
	return false
}

// EdgeTriggered reports whether the kind fires on membership transitions
// rather than on every qualifying report.
func (k ConstraintKind) EdgeTriggered() bool {
	return k == ConstraintZoneEntry || k == ConstraintZoneExit
}

// Constraint is one rule attached to a zone of interest. Value is kept as
// text and parsed when evaluated; a value that does not parse never matches.
type Constraint struct {
	Kind  ConstraintKind `json:"kind" validate:"required"`
	Value string         `json:"value,omitempty"`
}

// ZoneOfInterest is a circular region owned by one subscriber with an
// ordered list of constraints. Each owner has at most one.
type ZoneOfInterest struct {
	ID           string       `json:"id"`
	OwnerID      string       `json:"owner_id"`
	Name         string       `json:"name"`
	CenterLat    float64      `json:"center_lat"`
	CenterLon    float64      `json:"center_lon"`
	RadiusMeters float64      `json:"radius_m"`
	Constraints  []Constraint `json:"constraints"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// HasConstraint reports whether the zone declares a constraint of kind k.
func (z *ZoneOfInterest) HasConstraint(k ConstraintKind) bool {
	for _, c := range z.Constraints {
		if c.Kind == k {
			return true
		}
	}
	return false
}

// CollisionZone is a circular region monitored for close approaches between
// any two vessels inside it. Each owner has at most one.
type CollisionZone struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Name         string    `json:"name"`
	CenterLat    float64   `json:"center_lat"`
	CenterLon    float64   `json:"center_lon"`
	RadiusMeters float64   `json:"radius_m"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
