// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package models

// ViolationKind is the constraint kind that fired, or ViolationCollision.
type ViolationKind string

// ViolationCollision marks a close-approach violation from a collision zone.
const ViolationCollision ViolationKind = "collision"

// ZoneSource distinguishes which rule set produced a violation.
type ZoneSource string

const (
	ZoneSourceInterest  ZoneSource = "zone_of_interest"
	ZoneSourceCollision ZoneSource = "collision_zone"
)

// VesselRef identifies a vessel and where it was when a violation fired.
type VesselRef struct {
	MMSI      string  `json:"mmsi"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	SOG       float64 `json:"sog"`
	COG       float64 `json:"cog"`
}

// RefFromReport builds a VesselRef from a position report.
func RefFromReport(r PositionReport) VesselRef {
	return VesselRef{MMSI: r.MMSI, Latitude: r.Latitude, Longitude: r.Longitude, SOG: r.SOG, COG: r.COG}
}

// Violation is one rule firing for one report.
type Violation struct {
	Kind      ViolationKind `json:"kind"`
	Source    ZoneSource    `json:"source"`
	ZoneID    string        `json:"zone_id"`
	ZoneName  string        `json:"zone_name"`
	OwnerID   string        `json:"owner_id"`
	Vessel    VesselRef     `json:"vessel"`
	Other     *VesselRef    `json:"other,omitempty"` // collision only
	Message   string        `json:"message"`
	Timestamp int64         `json:"timestamp"`

	// Collision geometry, zero for zone violations.
	DistanceMeters float64 `json:"distance_m,omitempty"`
	CPAMeters      float64 `json:"cpa_m,omitempty"`
	TCPASeconds    float64 `json:"tcpa_s,omitempty"`
}

// Notification is the private per-subscriber payload for a violation.
type Notification struct {
	Kind      ViolationKind `json:"kind"`
	Timestamp int64         `json:"timestamp"`
	Message   string        `json:"message"`
	ZoneID    string        `json:"zone_id"`
	ZoneName  string        `json:"zone_name"`
	Vessel    VesselRef     `json:"vessel"`
	Other     *VesselRef    `json:"other,omitempty"`
	Watched   bool          `json:"watched,omitempty"` // delivered through the watch list
}

// NotificationFor renders the subscriber payload for v.
func NotificationFor(v Violation, watched bool) Notification {
	return Notification{
		Kind:      v.Kind,
		Timestamp: v.Timestamp,
		Message:   v.Message,
		ZoneID:    v.ZoneID,
		ZoneName:  v.ZoneName,
		Vessel:    v.Vessel,
		Other:     v.Other,
		Watched:   watched,
	}
}
