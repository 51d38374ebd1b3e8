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

	"github.com/tomtom215/shipwatch/internal/database/query"
	"github.com/tomtom215/shipwatch/internal/models"
)

const insertPositionSQL = `INSERT INTO positions (
	mmsi, ts, nav_status, rot, sog, cog, heading, lat, lon
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (mmsi, ts) DO NOTHING`

const positionColumns = `mmsi, ts, nav_status, rot, sog, cog, heading, lat, lon`

// DefaultTrackLimit bounds history queries without an explicit limit.
const DefaultTrackLimit = 10000

func positionArgs(r *models.PositionReport) []interface{} {
	var rot, heading interface{}
	if r.ROT != nil {
		rot = *r.ROT
	}
	if r.Heading != nil {
		heading = *r.Heading
	}
	return []interface{}{
		r.MMSI, r.Timestamp, r.NavStatus, rot, r.SOG, r.COG, heading, r.Latitude, r.Longitude,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPosition(row rowScanner) (models.PositionReport, error) {
	var r models.PositionReport
	var rot sql.NullFloat64
	var heading sql.NullInt64
	err := row.Scan(&r.MMSI, &r.Timestamp, &r.NavStatus, &rot, &r.SOG, &r.COG, &heading, &r.Latitude, &r.Longitude)
	if err != nil {
		return r, err
	}
	if rot.Valid {
		v := rot.Float64
		r.ROT = &v
	}
	if heading.Valid {
		v := int(heading.Int64)
		r.Heading = &v
	}
	return r, nil
}

// InsertPosition appends one report to history. A report already stored
// for the same (mmsi, ts) is left untouched.
func (db *DB) InsertPosition(ctx context.Context, r models.PositionReport) error {
	if db.closed.Load() {
		return ErrDatabaseClosed
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	stmt, err := db.stmt(ctx, insertPositionSQL)
	if err != nil {
		return err
	}
	err = db.withConflictRetry(ctx, func() error {
		_, execErr := stmt.ExecContext(ctx, positionArgs(&r)...)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert position %s@%d: %w", r.MMSI, r.Timestamp, err)
	}
	return nil
}

// InsertPositions appends a batch in one transaction and returns the number
// of rows submitted.
func (db *DB) InsertPositions(ctx context.Context, reports []models.PositionReport) (int, error) {
	if len(reports) == 0 {
		return 0, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertPositionSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer closeQuietly(stmt)

	for i := range reports {
		if _, err := stmt.ExecContext(ctx, positionArgs(&reports[i])...); err != nil {
			return 0, fmt.Errorf("failed to insert position %s@%d: %w", reports[i].MMSI, reports[i].Timestamp, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit positions: %w", err)
	}
	return len(reports), nil
}

// MaxTimestamp returns the newest report time in history. ok is false when
// history is empty.
func (db *DB) MaxTimestamp(ctx context.Context) (ts int64, ok bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var newest sql.NullInt64
	if err := db.conn.QueryRowContext(ctx, `SELECT MAX(ts) FROM positions`).Scan(&newest); err != nil {
		return 0, false, fmt.Errorf("failed to query max timestamp: %w", err)
	}
	return newest.Int64, newest.Valid, nil
}

// DeleteBefore removes every report with ts strictly below cutoff and
// returns the number of rows deleted.
func (db *DB) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var deleted int64
	err := db.withConflictRetry(ctx, func() error {
		res, err := db.conn.ExecContext(ctx, `DELETE FROM positions WHERE ts < ?`, cutoff)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete positions before %d: %w", cutoff, err)
	}
	return deleted, nil
}

// LatestPositions returns the newest stored report of every vessel,
// ordered by MMSI.
func (db *DB) LatestPositions(ctx context.Context) ([]models.PositionReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+positionColumns+` FROM latest_positions ORDER BY mmsi`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest positions: %w", err)
	}
	defer rows.Close()
	return collectPositions(rows)
}

// LatestPosition returns the newest stored report of one vessel.
func (db *DB) LatestPosition(ctx context.Context, mmsi string) (models.PositionReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE mmsi = ? ORDER BY ts DESC LIMIT 1`, mmsi)
	r, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, fmt.Errorf("failed to query latest position: %w", err)
	}
	return r, nil
}

// HistoryQuery filters position history. Zero values mean "no filter".
type HistoryQuery struct {
	MMSIs []string
	From  *int64
	To    *int64
	Box   *BoundingBox
	Limit int
}

// BoundingBox is a latitude/longitude rectangle in degrees.
type BoundingBox struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// QueryPositions returns history rows matching q ordered by time, then MMSI.
func (db *DB) QueryPositions(ctx context.Context, q HistoryQuery) ([]models.PositionReport, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	wb := query.NewWhereBuilder().
		AddMMSIs(q.MMSIs).
		AddTimeRange(q.From, q.To)
	if q.Box != nil {
		wb.AddBoundingBox(q.Box.MinLat, q.Box.MinLon, q.Box.MaxLat, q.Box.MaxLon)
	}
	where, args := wb.BuildWithPrefix()

	limit := q.Limit
	if limit <= 0 || limit > DefaultTrackLimit {
		limit = DefaultTrackLimit
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions `+where+` ORDER BY ts, mmsi LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()
	return collectPositions(rows)
}

// Track returns the stored path of one vessel in time order.
func (db *DB) Track(ctx context.Context, mmsi string, from, to *int64, limit int) ([]models.PositionReport, error) {
	return db.QueryPositions(ctx, HistoryQuery{MMSIs: []string{mmsi}, From: from, To: to, Limit: limit})
}

func collectPositions(rows *sql.Rows) ([]models.PositionReport, error) {
	var out []models.PositionReport
	for rows.Next() {
		r, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
