// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shipwatch/internal/eventprocessor"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
	"github.com/tomtom215/shipwatch/internal/models"
)

// PositionStore persists position history.
type PositionStore interface {
	InsertPosition(ctx context.Context, r models.PositionReport) error
}

// PositionCache holds the latest report per vessel.
type PositionCache interface {
	Upsert(r models.PositionReport) bool
	Len() int
}

// RuleEvaluator evaluates one report against the registered rules.
type RuleEvaluator interface {
	Evaluate(r models.PositionReport) []models.Violation
}

// Notifier fans updates and violations out to subscribers. Both calls must
// return without waiting on delivery.
type Notifier interface {
	Broadcast(update models.VesselUpdate)
	NotifyOwners(violations []models.Violation)
}

// VesselTypeLookup resolves a vessel's static type.
type VesselTypeLookup interface {
	ShipType(mmsi string) models.ShipType
}

// Deps are the collaborators of a Worker. Store may be nil, in which case
// history is not persisted.
type Deps struct {
	Store    PositionStore
	Cache    PositionCache
	Rules    RuleEvaluator
	Notifier Notifier
	Vessels  VesselTypeLookup

	// PersistTimeout bounds a single history insert. Zero means 5s.
	PersistTimeout time.Duration
}

// Stats are cumulative worker counters.
type Stats struct {
	Processed     int64 `json:"processed"`
	DecodeErrors  int64 `json:"decode_errors"`
	PersistErrors int64 `json:"persist_errors"`
	CacheUpdates  int64 `json:"cache_updates"`
	StaleReports  int64 `json:"stale_reports"`
	Violations    int64 `json:"violations"`
	LastTimestamp int64 `json:"last_timestamp"`
}

// Worker processes delivered position messages.
type Worker struct {
	deps   Deps
	logger zerolog.Logger

	processed     atomic.Int64
	decodeErrors  atomic.Int64
	persistErrors atomic.Int64
	cacheUpdates  atomic.Int64
	staleReports  atomic.Int64
	violations    atomic.Int64
	lastTimestamp atomic.Int64
}

// NewWorker creates a Worker. Cache, Rules and Notifier are required.
func NewWorker(deps Deps) *Worker {
	if deps.PersistTimeout <= 0 {
		deps.PersistTimeout = 5 * time.Second
	}
	return &Worker{
		deps:   deps,
		logger: logging.WithComponent("ingest"),
	}
}

// Handle is the router handler. It always returns nil.
func (w *Worker) Handle(msg *message.Message) error {
	report, err := eventprocessor.DecodePosition(msg)
	if err != nil {
		w.decodeErrors.Add(1)
		metrics.RecordIngestError("decode")
		w.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping undecodable position message")
		return nil
	}
	w.Process(msg.Context(), report)
	return nil
}

// Process runs the ingestion steps for one decoded report.
func (w *Worker) Process(ctx context.Context, r models.PositionReport) {
	start := time.Now()

	if w.deps.Store != nil {
		pctx, cancel := context.WithTimeout(ctx, w.deps.PersistTimeout)
		if err := w.deps.Store.InsertPosition(pctx, r); err != nil {
			w.persistErrors.Add(1)
			metrics.RecordIngestError("persist")
			w.logger.Error().Err(err).Str("mmsi", r.MMSI).Int64("ts", r.Timestamp).Msg("Failed to persist position")
		}
		cancel()
	}

	fresh := w.deps.Cache.Upsert(r)
	if fresh {
		w.cacheUpdates.Add(1)
	} else {
		w.staleReports.Add(1)
	}
	metrics.UpdatePositionCacheSize(w.deps.Cache.Len())

	// Entry state follows report time, so a late or redelivered report must
	// not drive it.
	var violations []models.Violation
	if fresh {
		violations = w.deps.Rules.Evaluate(r)
	}

	shipType := models.ShipTypeUnknown
	if w.deps.Vessels != nil {
		shipType = w.deps.Vessels.ShipType(r.MMSI)
	}
	w.deps.Notifier.Broadcast(models.NewVesselUpdate(r, shipType))
	if len(violations) > 0 {
		w.violations.Add(int64(len(violations)))
		w.deps.Notifier.NotifyOwners(violations)
	}

	w.processed.Add(1)
	for {
		last := w.lastTimestamp.Load()
		if r.Timestamp <= last || w.lastTimestamp.CompareAndSwap(last, r.Timestamp) {
			break
		}
	}
	metrics.RecordIngest(time.Since(start))
}

// Stats returns a snapshot of the counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Processed:     w.processed.Load(),
		DecodeErrors:  w.decodeErrors.Load(),
		PersistErrors: w.persistErrors.Load(),
		CacheUpdates:  w.cacheUpdates.Load(),
		StaleReports:  w.staleReports.Load(),
		Violations:    w.violations.Load(),
		LastTimestamp: w.lastTimestamp.Load(),
	}
}
