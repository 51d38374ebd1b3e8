// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"net/http"

	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/eventprocessor"
	"github.com/tomtom215/shipwatch/internal/ingest"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/notify"
	"github.com/tomtom215/shipwatch/internal/replay"
	"github.com/tomtom215/shipwatch/internal/retention"
	ws "github.com/tomtom215/shipwatch/internal/websocket"
)

// PipelineStats aggregates counters from every pipeline stage. Stages that
// are not configured are omitted.
type PipelineStats struct {
	Replay      *replay.SourceStats         `json:"replay,omitempty"`
	SpeedFactor *float64                    `json:"speed_factor,omitempty"`
	Transport   *eventprocessor.RouterStats `json:"transport,omitempty"`
	Worker      *ingest.Stats               `json:"worker,omitempty"`
	Cache       *models.CacheStats          `json:"cache,omitempty"`
	Rules       *detection.EngineStats      `json:"rules,omitempty"`
	Notifier    *notify.Stats               `json:"notifier,omitempty"`
	Hub         *ws.HubStats                `json:"hub,omitempty"`
	Webhook     *notify.WebhookStats        `json:"webhook,omitempty"`
	Retention   *retention.Stats            `json:"retention,omitempty"`
}

// IngestStats returns the pipeline counters.
func (h *Handler) IngestStats(w http.ResponseWriter, r *http.Request) {
	var out PipelineStats
	d := h.deps

	if d.Replay != nil {
		s := d.Replay.Stats()
		out.Replay = &s
	}
	if d.Speed != nil {
		f := d.Speed.Get()
		out.SpeedFactor = &f
	}
	if d.Transport != nil {
		s := d.Transport.Stats()
		out.Transport = &s
	}
	if d.Worker != nil {
		s := d.Worker.Stats()
		out.Worker = &s
	}
	if d.Positions != nil {
		s := d.Positions.Stats()
		out.Cache = &s
	}
	if d.Engine != nil {
		s := d.Engine.Stats()
		out.Rules = &s
	}
	if d.Notifier != nil {
		s := d.Notifier.Stats()
		out.Notifier = &s
	}
	if d.Hub != nil {
		s := d.Hub.Stats()
		out.Hub = &s
	}
	if d.Webhook != nil {
		s := d.Webhook.Stats()
		out.Webhook = &s
	}
	if d.Retention != nil {
		s := d.Retention.Stats()
		out.Retention = &s
	}

	respondData(w, r, http.StatusOK, out)
}

// PerfStats returns per-route latency over the recent request window.
func (h *Handler) PerfStats(w http.ResponseWriter, r *http.Request) {
	respondList(w, r, h.perfMon.GetStats())
}
