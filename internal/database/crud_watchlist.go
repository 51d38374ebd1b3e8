// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/shipwatch/internal/models"
)

// AddWatch records that subscriberID watches mmsi. Re-adding is a no-op.
func (db *DB) AddWatch(ctx context.Context, subscriberID, mmsi string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO watchlist (subscriber_id, mmsi, created_at) VALUES (?, ?, ?)
		ON CONFLICT (subscriber_id, mmsi) DO NOTHING`,
		subscriberID, mmsi, storedNow())
	if err != nil {
		return fmt.Errorf("failed to add watch: %w", err)
	}
	return nil
}

// RemoveWatch deletes the pair. ErrNotFound if it did not exist.
func (db *DB) RemoveWatch(ctx context.Context, subscriberID, mmsi string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM watchlist WHERE subscriber_id = ? AND mmsi = ?`, subscriberID, mmsi)
	if err != nil {
		return fmt.Errorf("failed to remove watch: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWatches returns watch entries, optionally restricted to one
// subscriber, ordered by subscriber then MMSI.
func (db *DB) ListWatches(ctx context.Context, subscriberID string) ([]models.WatchEntry, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	q := `SELECT subscriber_id, mmsi, created_at FROM watchlist`
	var args []interface{}
	if subscriberID != "" {
		q += ` WHERE subscriber_id = ?`
		args = append(args, subscriberID)
	}
	q += ` ORDER BY subscriber_id, mmsi`

	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list watches: %w", err)
	}
	defer rows.Close()

	var out []models.WatchEntry
	for rows.Next() {
		var e models.WatchEntry
		if err := rows.Scan(&e.SubscriberID, &e.MMSI, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
