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

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/shipwatch/internal/models"
)

const zoneColumns = `id, owner_id, name, center_lat, center_lon, radius_m, constraints, created_at, updated_at`

func scanZone(row rowScanner) (models.ZoneOfInterest, error) {
	var z models.ZoneOfInterest
	var constraints string
	err := row.Scan(&z.ID, &z.OwnerID, &z.Name, &z.CenterLat, &z.CenterLon, &z.RadiusMeters,
		&constraints, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return z, err
	}
	if err := json.Unmarshal([]byte(constraints), &z.Constraints); err != nil {
		return z, fmt.Errorf("decode constraints of zone %s: %w", z.ID, err)
	}
	return z, nil
}

// GetZone returns the zone of interest owned by ownerID.
func (db *DB) GetZone(ctx context.Context, ownerID string) (models.ZoneOfInterest, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	z, err := scanZone(db.conn.QueryRowContext(ctx,
		`SELECT `+zoneColumns+` FROM zones WHERE owner_id = ?`, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return z, ErrNotFound
	}
	if err != nil {
		return z, fmt.Errorf("failed to get zone: %w", err)
	}
	return z, nil
}

// SaveZone creates or replaces the zone of ownerID. An existing zone keeps
// its ID and creation time, which fix its evaluation order. created reports
// whether a new row was inserted.
func (db *DB) SaveZone(ctx context.Context, z models.ZoneOfInterest) (saved models.ZoneOfInterest, created bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if z.Constraints == nil {
		z.Constraints = []models.Constraint{}
	}
	constraints, err := json.Marshal(z.Constraints)
	if err != nil {
		return z, false, fmt.Errorf("encode constraints: %w", err)
	}

	now := storedNow()
	existing, err := db.GetZone(ctx, z.OwnerID)
	switch {
	case errors.Is(err, ErrNotFound):
		z.ID = uuid.New().String()
		z.CreatedAt = now
		z.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx, `INSERT INTO zones (`+zoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			z.ID, z.OwnerID, z.Name, z.CenterLat, z.CenterLon, z.RadiusMeters, string(constraints), z.CreatedAt, z.UpdatedAt)
		if err != nil {
			return z, false, fmt.Errorf("failed to insert zone: %w", err)
		}
		return z, true, nil
	case err != nil:
		return z, false, err
	}

	z.ID = existing.ID
	z.CreatedAt = existing.CreatedAt
	z.UpdatedAt = now
	_, err = db.conn.ExecContext(ctx, `UPDATE zones SET
		name = ?, center_lat = ?, center_lon = ?, radius_m = ?, constraints = ?, updated_at = ?
		WHERE owner_id = ?`,
		z.Name, z.CenterLat, z.CenterLon, z.RadiusMeters, string(constraints), z.UpdatedAt, z.OwnerID)
	if err != nil {
		return z, false, fmt.Errorf("failed to update zone: %w", err)
	}
	return z, false, nil
}

// DeleteZone removes the zone of ownerID. ErrNotFound if there is none.
func (db *DB) DeleteZone(ctx context.Context, ownerID string) error {
	return db.deleteByOwner(ctx, "zones", ownerID)
}

// ListZones returns every zone in creation order.
func (db *DB) ListZones(ctx context.Context) ([]models.ZoneOfInterest, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY created_at, owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer rows.Close()

	var out []models.ZoneOfInterest
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

const collisionZoneColumns = `id, owner_id, name, center_lat, center_lon, radius_m, created_at, updated_at`

func scanCollisionZone(row rowScanner) (models.CollisionZone, error) {
	var z models.CollisionZone
	err := row.Scan(&z.ID, &z.OwnerID, &z.Name, &z.CenterLat, &z.CenterLon, &z.RadiusMeters, &z.CreatedAt, &z.UpdatedAt)
	return z, err
}

// GetCollisionZone returns the collision zone owned by ownerID.
func (db *DB) GetCollisionZone(ctx context.Context, ownerID string) (models.CollisionZone, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	z, err := scanCollisionZone(db.conn.QueryRowContext(ctx,
		`SELECT `+collisionZoneColumns+` FROM collision_zones WHERE owner_id = ?`, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return z, ErrNotFound
	}
	if err != nil {
		return z, fmt.Errorf("failed to get collision zone: %w", err)
	}
	return z, nil
}

// SaveCollisionZone creates or replaces the collision zone of ownerID with
// the same identity rules as SaveZone.
func (db *DB) SaveCollisionZone(ctx context.Context, z models.CollisionZone) (saved models.CollisionZone, created bool, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := storedNow()
	existing, err := db.GetCollisionZone(ctx, z.OwnerID)
	switch {
	case errors.Is(err, ErrNotFound):
		z.ID = uuid.New().String()
		z.CreatedAt = now
		z.UpdatedAt = now
		_, err = db.conn.ExecContext(ctx, `INSERT INTO collision_zones (`+collisionZoneColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			z.ID, z.OwnerID, z.Name, z.CenterLat, z.CenterLon, z.RadiusMeters, z.CreatedAt, z.UpdatedAt)
		if err != nil {
			return z, false, fmt.Errorf("failed to insert collision zone: %w", err)
		}
		return z, true, nil
	case err != nil:
		return z, false, err
	}

	z.ID = existing.ID
	z.CreatedAt = existing.CreatedAt
	z.UpdatedAt = now
	_, err = db.conn.ExecContext(ctx, `UPDATE collision_zones SET
		name = ?, center_lat = ?, center_lon = ?, radius_m = ?, updated_at = ?
		WHERE owner_id = ?`,
		z.Name, z.CenterLat, z.CenterLon, z.RadiusMeters, z.UpdatedAt, z.OwnerID)
	if err != nil {
		return z, false, fmt.Errorf("failed to update collision zone: %w", err)
	}
	return z, false, nil
}

// DeleteCollisionZone removes the collision zone of ownerID.
func (db *DB) DeleteCollisionZone(ctx context.Context, ownerID string) error {
	return db.deleteByOwner(ctx, "collision_zones", ownerID)
}

// ListCollisionZones returns every collision zone in creation order.
func (db *DB) ListCollisionZones(ctx context.Context) ([]models.CollisionZone, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+collisionZoneColumns+` FROM collision_zones ORDER BY created_at, owner_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collision zones: %w", err)
	}
	defer rows.Close()

	var out []models.CollisionZone
	for rows.Next() {
		z, err := scanCollisionZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collision zone: %w", err)
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// deleteByOwner deletes from one of the fixed zone tables.
func (db *DB) deleteByOwner(ctx context.Context, table, ownerID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE owner_id = ?`, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
