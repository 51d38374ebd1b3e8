// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/shipwatch/internal/cache"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/notify"
	"github.com/tomtom215/shipwatch/internal/replay"
)

// StateStore is the persisted state read back at startup.
type StateStore interface {
	LatestPositions(ctx context.Context) ([]models.PositionReport, error)
	ListZones(ctx context.Context) ([]models.ZoneOfInterest, error)
	ListCollisionZones(ctx context.Context) ([]models.CollisionZone, error)
	ListWatches(ctx context.Context, subscriberID string) ([]models.WatchEntry, error)
}

// VesselStore persists static vessel data.
type VesselStore interface {
	UpsertVessels(ctx context.Context, vessels []models.VesselStaticInfo) (int, error)
}

// RehydrateResult counts what was restored.
type RehydrateResult struct {
	Positions      int
	Zones          int
	CollisionZones int
	Watches        int
}

// rehydrate restores in-memory state from the store so a restart does not
// lose the latest positions, registered rules or watch lists.
func rehydrate(
	ctx context.Context,
	store StateStore,
	positions *cache.PositionCache,
	engine *detection.RuleEngine,
	watchers *notify.WatchList,
) (RehydrateResult, error) {
	var res RehydrateResult

	reports, err := store.LatestPositions(ctx)
	if err != nil {
		return res, fmt.Errorf("load latest positions: %w", err)
	}
	res.Positions = positions.Load(reports)

	zones, err := store.ListZones(ctx)
	if err != nil {
		return res, fmt.Errorf("load zones: %w", err)
	}
	res.Zones = engine.LoadZones(zones)

	czs, err := store.ListCollisionZones(ctx)
	if err != nil {
		return res, fmt.Errorf("load collision zones: %w", err)
	}
	res.CollisionZones = engine.LoadCollisionZones(czs)

	watches, err := store.ListWatches(ctx, "")
	if err != nil {
		return res, fmt.Errorf("load watch lists: %w", err)
	}
	res.Watches = watchers.Load(watches)

	logging.Info().
		Int("positions", res.Positions).
		Int("zones", res.Zones).
		Int("collision_zones", res.CollisionZones).
		Int("watches", res.Watches).
		Msg("State rehydrated from store")

	return res, nil
}

// loadRegistry reads the static vessel CSV into the store and the in-memory
// registry. An empty path is a no-op.
func loadRegistry(ctx context.Context, path string, store VesselStore, registry *cache.VesselRegistry) (int, error) {
	if path == "" {
		return 0, nil
	}

	res, err := replay.LoadStaticRegistry(path)
	if err != nil {
		return 0, err
	}
	if store != nil {
		if _, err := store.UpsertVessels(ctx, res.Vessels); err != nil {
			return 0, fmt.Errorf("persist static registry: %w", err)
		}
	}
	return registry.Load(res.Vessels), nil
}
