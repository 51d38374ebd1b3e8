// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"context"
	"time"

	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/eventprocessor"
	"github.com/tomtom215/shipwatch/internal/ingest"
	"github.com/tomtom215/shipwatch/internal/middleware"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/notify"
	"github.com/tomtom215/shipwatch/internal/replay"
	"github.com/tomtom215/shipwatch/internal/retention"
	ws "github.com/tomtom215/shipwatch/internal/websocket"
)

// SpeedController is the live replay speed factor.
type SpeedController interface {
	Get() float64
	Set(factor float64) error
}

// ZoneStore persists zones of interest and collision zones, one per owner.
type ZoneStore interface {
	GetZone(ctx context.Context, ownerID string) (models.ZoneOfInterest, error)
	SaveZone(ctx context.Context, z models.ZoneOfInterest) (models.ZoneOfInterest, bool, error)
	DeleteZone(ctx context.Context, ownerID string) error
	GetCollisionZone(ctx context.Context, ownerID string) (models.CollisionZone, error)
	SaveCollisionZone(ctx context.Context, z models.CollisionZone) (models.CollisionZone, bool, error)
	DeleteCollisionZone(ctx context.Context, ownerID string) error
}

// WatchStore persists watch list entries.
type WatchStore interface {
	AddWatch(ctx context.Context, subscriberID, mmsi string) error
	RemoveWatch(ctx context.Context, subscriberID, mmsi string) error
}

// HistoryStore answers history and registry queries.
type HistoryStore interface {
	Ping(ctx context.Context) error
	LatestPosition(ctx context.Context, mmsi string) (models.PositionReport, error)
	QueryPositions(ctx context.Context, q database.HistoryQuery) ([]models.PositionReport, error)
	GetVessel(ctx context.Context, mmsi string) (models.VesselStaticInfo, error)
}

// PositionReader is the read side of the position cache.
type PositionReader interface {
	Get(mmsi string) (models.PositionReport, bool)
	Snapshot() []models.PositionReport
	Stats() models.CacheStats
	Nearby(lat, lon, radiusKm float64) []models.PositionReport
}

// VesselTypeLookup resolves a vessel's registered type.
type VesselTypeLookup interface {
	ShipType(mmsi string) models.ShipType
}

// WatchIndex is the in-memory watch list read by the notifier.
type WatchIndex interface {
	Add(subscriberID, mmsi string) bool
	Remove(subscriberID, mmsi string) bool
	List(subscriberID string) []string
}

// Stats providers. Each is optional.
type (
	WorkerStats    interface{ Stats() ingest.Stats }
	RuleStats      interface{ Stats() detection.EngineStats }
	NotifierStats  interface{ Stats() notify.Stats }
	ReplayStats    interface{ Stats() replay.SourceStats }
	WebhookStats   interface{ Stats() notify.WebhookStats }
	RetentionStats interface{ Stats() retention.Stats }
	TransportStats interface {
		Stats() eventprocessor.RouterStats
		IsRunning() bool
	}
)

// Deps are the collaborators of the admin handlers.
type Deps struct {
	Speed     SpeedController
	Zones     ZoneStore
	Rules     detection.RuleCache
	Watches   WatchStore
	Watchers  WatchIndex
	History   HistoryStore
	Positions PositionReader
	Vessels   VesselTypeLookup
	Hub       *ws.Hub

	Worker    WorkerStats
	Engine    RuleStats
	Notifier  NotifierStats
	Replay    ReplayStats
	Webhook   WebhookStats
	Retention RetentionStats
	Transport TransportStats

	// TransportKind is reported by /health.
	TransportKind string

	// AllowedOrigins gate WebSocket upgrades; "*" allows any origin.
	AllowedOrigins []string
}

// Handler serves the admin API.
//
// Handler methods are split across files:
//   - handlers_replay.go: replay speed control
//   - handlers_zones.go: zone of interest and collision zone CRUD
//   - handlers_watchlist.go: per-subscriber watch list
//   - handlers_vessels.go: live positions, tracks and history
//   - handlers_stats.go: pipeline counters and latency window
//   - handlers_health.go: health check
//   - handlers_websocket.go: WebSocket upgrade
type Handler struct {
	deps      Deps
	perfMon   *middleware.PerformanceMonitor
	startTime time.Time
}

// NewHandler creates a Handler. Nil optional dependencies disable the
// endpoints that need them with 503.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		deps:      deps,
		perfMon:   middleware.NewPerformanceMonitor(1000),
		startTime: time.Now(),
	}
}

// PerformanceMonitor returns the latency window fed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}
