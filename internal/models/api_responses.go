// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package models

import (
	"time"
)

// APIResponse is the envelope of every admin API response.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"factor": 10},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "factor must be greater than 0"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response timing and tracing details.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Count       *int      `json:"count,omitempty"`
}

// APIError is the error half of an APIResponse.
//
// Common error codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - AUTHENTICATION_ERROR: missing or invalid subscriber identity
//   - NOT_FOUND: resource doesn't exist
//   - DATABASE_ERROR: store failure
//   - SERVICE_UNAVAILABLE: optional component not configured
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the /health payload.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	TransportKind     string  `json:"transport_kind"`
	TransportRunning  bool    `json:"transport_running"`
	CachedVessels     int     `json:"cached_vessels"`
	Uptime            float64 `json:"uptime_seconds"`
}
