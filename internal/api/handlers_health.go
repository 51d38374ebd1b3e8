// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/shipwatch/internal/models"
)

// Version is reported by /health; overridden at link time.
var Version = "dev"

const healthPingTimeout = 2 * time.Second

// Health reports component status. The process is "healthy" when the store
// answers and the transport consumer runs, "degraded" otherwise. Both are
// served with 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:        "healthy",
		Version:       Version,
		TransportKind: h.deps.TransportKind,
		Uptime:        time.Since(h.startTime).Seconds(),
	}

	if h.deps.History != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		health.DatabaseConnected = h.deps.History.Ping(ctx) == nil
		cancel()
	}
	if h.deps.Transport != nil {
		health.TransportRunning = h.deps.Transport.IsRunning()
	}
	if h.deps.Positions != nil {
		health.CachedVessels = h.deps.Positions.Stats().Vessels
	}

	if !health.DatabaseConnected || !health.TransportRunning {
		health.Status = "degraded"
	}

	respondData(w, r, http.StatusOK, health)
}
