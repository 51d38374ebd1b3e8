// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// Timestamps are written by the application, never defaulted, so the
// schema does not depend on the ICU extension.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS positions (
		mmsi TEXT NOT NULL,
		ts BIGINT NOT NULL,
		nav_status INTEGER NOT NULL,
		rot DOUBLE,
		sog DOUBLE NOT NULL,
		cog DOUBLE NOT NULL,
		heading INTEGER,
		lat DOUBLE NOT NULL,
		lon DOUBLE NOT NULL,
		PRIMARY KEY (mmsi, ts)
	)`,

	`CREATE TABLE IF NOT EXISTS vessels (
		mmsi TEXT PRIMARY KEY,
		ship_type TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS zones (
		owner_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		center_lat DOUBLE NOT NULL,
		center_lon DOUBLE NOT NULL,
		radius_m DOUBLE NOT NULL,
		constraints TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS collision_zones (
		owner_id TEXT PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		center_lat DOUBLE NOT NULL,
		center_lon DOUBLE NOT NULL,
		radius_m DOUBLE NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS watchlist (
		subscriber_id TEXT NOT NULL,
		mmsi TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (subscriber_id, mmsi)
	)`,
}

// createIndexes creates secondary indexes.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		// Retention deletes and MaxTimestamp scan on ts alone.
		`CREATE INDEX IF NOT EXISTS idx_positions_ts ON positions(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_watchlist_mmsi ON watchlist(mmsi)`,
	}
	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}
	return nil
}
