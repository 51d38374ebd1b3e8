// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"github.com/tomtom215/shipwatch/internal/models"
)

// SpeedRequest sets the replay speed factor.
type SpeedRequest struct {
	Factor *float64 `json:"factor" validate:"required,gt=0"`
}

// SpeedResponse reports the replay speed factor.
type SpeedResponse struct {
	Factor float64 `json:"factor"`
}

// ZoneRequest creates or replaces the caller's zone of interest.
type ZoneRequest struct {
	Name         string              `json:"name" validate:"required,max=128"`
	CenterLat    float64             `json:"center_lat" validate:"latitude"`
	CenterLon    float64             `json:"center_lon" validate:"longitude"`
	RadiusMeters float64             `json:"radius_m" validate:"gt=0,lte=1000000"`
	Constraints  []models.Constraint `json:"constraints" validate:"max=32,dive"`
}

// CollisionZoneRequest creates or replaces the caller's collision zone.
type CollisionZoneRequest struct {
	Name         string  `json:"name" validate:"required,max=128"`
	CenterLat    float64 `json:"center_lat" validate:"latitude"`
	CenterLon    float64 `json:"center_lon" validate:"longitude"`
	RadiusMeters float64 `json:"radius_m" validate:"gt=0,lte=1000000"`
}

// WatchRequest names the vessel in a watch list path.
type WatchRequest struct {
	MMSI string `validate:"required,mmsi"`
}

// WatchResponse is the caller's watch list.
type WatchResponse struct {
	SubscriberID string   `json:"subscriber_id"`
	MMSIs        []string `json:"mmsis"`
}

// NearbyRequest selects vessels around a point.
type NearbyRequest struct {
	Lat      float64 `validate:"latitude"`
	Lon      float64 `validate:"longitude"`
	RadiusKm float64 `validate:"gt=0,lte=500"`
}

// HistoryRequest filters stored position history.
type HistoryRequest struct {
	MMSIs  []string `validate:"max=100,dive,mmsi"`
	From   *int64
	To     *int64
	MinLat *float64 `validate:"omitempty,latitude"`
	MinLon *float64 `validate:"omitempty,longitude"`
	MaxLat *float64 `validate:"omitempty,latitude"`
	MaxLon *float64 `validate:"omitempty,longitude"`
	Limit  int      `validate:"gte=1,lte=10000"`
}
