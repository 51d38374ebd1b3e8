// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package models

import (
	"fmt"
	"time"
)

// HeadingNotAvailable is the AIS sentinel for "no true heading".
const HeadingNotAvailable = 511

// MovingThresholdKnots is the speed over ground above which a vessel counts as underway.
const MovingThresholdKnots = 0.5

// PositionReport is a single AIS position message.
// ROT and Heading are nil when the source marks them as not available.
type PositionReport struct {
	MMSI      string   `json:"mmsi" validate:"required,mmsi"`
	NavStatus int      `json:"nav_status" validate:"gte=0,lte=15"`
	ROT       *float64 `json:"rot,omitempty"`
	SOG       float64  `json:"sog" validate:"gte=0"`
	COG       float64  `json:"cog" validate:"gte=0,lte=360"`
	Heading   *int     `json:"heading,omitempty"`
	Latitude  float64  `json:"lat" validate:"latitude"`
	Longitude float64  `json:"lon" validate:"longitude"`
	Timestamp int64    `json:"timestamp"` // epoch seconds
}

// Time returns the report timestamp as a time.Time in UTC.
func (p PositionReport) Time() time.Time {
	return time.Unix(p.Timestamp, 0).UTC()
}

// IsMoving reports whether the vessel is underway by speed over ground.
func (p PositionReport) IsMoving() bool {
	return p.SOG >= MovingThresholdKnots
}

// Key returns the transport key for the report. Two deliveries of the same
// report share a key, which makes redelivery detectable.
func (p PositionReport) Key() string {
	return fmt.Sprintf("%s-%d", p.MMSI, p.Timestamp)
}

// NavStatusName returns the ITU-R M.1371 description of a navigational status code.
func NavStatusName(code int) string {
	if name, ok := navStatusNames[code]; ok {
		return name
	}
	return "undefined"
}

var navStatusNames = map[int]string{
	0:  "under way using engine",
	1:  "at anchor",
	2:  "not under command",
	3:  "restricted manoeuverability",
	4:  "constrained by her draught",
	5:  "moored",
	6:  "aground",
	7:  "engaged in fishing",
	8:  "under way sailing",
	14: "ais-sart active",
	15: "undefined",
}

// VesselUpdate is the public broadcast payload for one ingested report.
type VesselUpdate struct {
	MMSI      string   `json:"mmsi"`
	NavStatus int      `json:"nav_status"`
	ROT       *float64 `json:"rot,omitempty"`
	SOG       float64  `json:"sog"`
	COG       float64  `json:"cog"`
	Heading   *int     `json:"heading,omitempty"`
	Latitude  float64  `json:"lat"`
	Longitude float64  `json:"lon"`
	Timestamp int64    `json:"timestamp"`
	ShipType  ShipType `json:"ship_type"`
}

// NewVesselUpdate enriches a report with the resolved vessel type.
func NewVesselUpdate(r PositionReport, shipType ShipType) VesselUpdate {
	return VesselUpdate{
		MMSI:      r.MMSI,
		NavStatus: r.NavStatus,
		ROT:       r.ROT,
		SOG:       r.SOG,
		COG:       r.COG,
		Heading:   r.Heading,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timestamp: r.Timestamp,
		ShipType:  shipType,
	}
}

// CacheStats summarizes the live position cache.
type CacheStats struct {
	Vessels         int   `json:"vessels"`
	Moving          int   `json:"moving"`
	Stationary      int   `json:"stationary"`
	OldestTimestamp int64 `json:"oldest_timestamp,omitempty"`
	NewestTimestamp int64 `json:"newest_timestamp,omitempty"`
}
