// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/shipwatch/internal/models"
)

func TestWatchlist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	pairs := [][2]string{{"bob", "2"}, {"alice", "1"}, {"alice", "2"}, {"alice", "1"}}
	for _, p := range pairs {
		if err := db.AddWatch(ctx, p[0], p[1]); err != nil {
			t.Fatalf("AddWatch(%v) error = %v", p, err)
		}
	}

	all, err := db.ListWatches(ctx, "")
	if err != nil {
		t.Fatalf("ListWatches() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[0].SubscriberID != "alice" || all[0].MMSI != "1" {
		t.Errorf("all[0] = %+v, want alice/1", all[0])
	}

	alice, err := db.ListWatches(ctx, "alice")
	if err != nil {
		t.Fatalf("ListWatches(alice) error = %v", err)
	}
	if len(alice) != 2 {
		t.Errorf("len(alice) = %d, want 2", len(alice))
	}

	if err := db.RemoveWatch(ctx, "alice", "1"); err != nil {
		t.Fatalf("RemoveWatch() error = %v", err)
	}
	if err := db.RemoveWatch(ctx, "alice", "1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveWatch() = %v, want ErrNotFound", err)
	}
}

func TestUpsertVessels(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.UpsertVessels(ctx, []models.VesselStaticInfo{
		{MMSI: "2", ShipType: models.ShipTypeCargo},
		{MMSI: "1", ShipType: models.ShipTypeTanker},
		{MMSI: "2", ShipType: models.ShipTypeFishing},
	})
	if err != nil {
		t.Fatalf("UpsertVessels() error = %v", err)
	}
	if n != 2 {
		t.Errorf("UpsertVessels() = %d, want 2", n)
	}

	v, err := db.GetVessel(ctx, "2")
	if err != nil {
		t.Fatalf("GetVessel() error = %v", err)
	}
	if v.ShipType != models.ShipTypeFishing {
		t.Errorf("ship type = %q, want last write fishing", v.ShipType)
	}

	if _, err := db.UpsertVessels(ctx, []models.VesselStaticInfo{{MMSI: "1", ShipType: models.ShipTypeCargo}}); err != nil {
		t.Fatalf("UpsertVessels(update) error = %v", err)
	}
	list, err := db.ListVessels(ctx)
	if err != nil {
		t.Fatalf("ListVessels() error = %v", err)
	}
	if len(list) != 2 || list[0].MMSI != "1" || list[0].ShipType != models.ShipTypeCargo {
		t.Errorf("ListVessels() = %+v", list)
	}

	if _, err := db.GetVessel(ctx, "404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVessel(404) = %v, want ErrNotFound", err)
	}
}
