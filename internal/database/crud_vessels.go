// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/shipwatch/internal/models"
)

// UpsertVessels writes registry records in one transaction. A later record
// for the same MMSI replaces the earlier one.
func (db *DB) UpsertVessels(ctx context.Context, vessels []models.VesselStaticInfo) (int, error) {
	if len(vessels) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vessels (mmsi, ship_type, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (mmsi) DO UPDATE SET ship_type = EXCLUDED.ship_type, updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare vessel upsert: %w", err)
	}
	defer closeQuietly(stmt)

	// Last record per MMSI wins; the returned count is distinct vessels.
	latest := make(map[string]models.ShipType, len(vessels))
	order := make([]string, 0, len(vessels))
	for _, v := range vessels {
		if _, seen := latest[v.MMSI]; !seen {
			order = append(order, v.MMSI)
		}
		latest[v.MMSI] = v.ShipType
	}

	now := storedNow()
	for _, mmsi := range order {
		if _, err := stmt.ExecContext(ctx, mmsi, string(latest[mmsi]), now); err != nil {
			return 0, fmt.Errorf("failed to upsert vessel %s: %w", mmsi, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit vessels: %w", err)
	}
	return len(order), nil
}

// GetVessel returns the registry record for mmsi.
func (db *DB) GetVessel(ctx context.Context, mmsi string) (models.VesselStaticInfo, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var v models.VesselStaticInfo
	var shipType string
	err := db.conn.QueryRowContext(ctx, `SELECT mmsi, ship_type FROM vessels WHERE mmsi = ?`, mmsi).
		Scan(&v.MMSI, &shipType)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("failed to get vessel: %w", err)
	}
	v.ShipType = models.ShipType(shipType)
	return v, nil
}

// ListVessels returns the whole registry ordered by MMSI.
func (db *DB) ListVessels(ctx context.Context) ([]models.VesselStaticInfo, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT mmsi, ship_type FROM vessels ORDER BY mmsi`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vessels: %w", err)
	}
	defer rows.Close()

	var out []models.VesselStaticInfo
	for rows.Next() {
		var v models.VesselStaticInfo
		var shipType string
		if err := rows.Scan(&v.MMSI, &shipType); err != nil {
			return nil, fmt.Errorf("failed to scan vessel: %w", err)
		}
		v.ShipType = models.ShipType(shipType)
		out = append(out, v)
	}
	return out, rows.Err()
}
