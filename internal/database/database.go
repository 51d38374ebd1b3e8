// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/shipwatch/internal/config"
	"github.com/tomtom215/shipwatch/internal/logging"
)

// DB wraps the DuckDB connection and provides data access methods
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	closed atomic.Bool

	// Prepared statement caching for the ingestion hot path
	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex

	conflictRetries int
	conflictBackoff time.Duration
}

// New opens the database and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	preserveOrder := "true"
	if !cfg.PreserveInsertionOrder {
		preserveOrder = "false"
	}

	// No extensions are needed; auto-install stays off so startup never
	// touches the network.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:            conn,
		cfg:             cfg,
		stmtCache:       make(map[string]*sql.Stmt),
		conflictRetries: 3,
		conflictBackoff: 10 * time.Millisecond,
	}

	db.configureConnectionPool()

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database opened")
	return db, nil
}

// configureConnectionPool sets connection pool parameters.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

func (db *DB) initialize() error {
	if err := db.createTables(); err != nil {
		return err
	}
	if err := db.runVersionedMigrations(); err != nil {
		return err
	}
	if !db.cfg.SkipIndexes {
		if err := db.createIndexes(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}
	return nil
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping verifies the connection is usable.
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrDatabaseClosed
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		if isConnectionError(err) {
			return fmt.Errorf("%w: %v", ErrDatabaseClosed, err)
		}
		return err
	}
	return nil
}

// stmt returns a cached prepared statement for query.
func (db *DB) stmt(ctx context.Context, query string) (*sql.Stmt, error) {
	db.stmtCacheMu.RLock()
	s, ok := db.stmtCache[query]
	db.stmtCacheMu.RUnlock()
	if ok {
		return s, nil
	}

	db.stmtCacheMu.Lock()
	defer db.stmtCacheMu.Unlock()
	if s, ok := db.stmtCache[query]; ok {
		return s, nil
	}
	s, err := db.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement: %w", err)
	}
	db.stmtCache[query] = s
	return s, nil
}

// withConflictRetry runs fn, retrying DuckDB transaction conflicts with a
// short linear backoff.
func (db *DB) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= db.conflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(db.conflictBackoff * time.Duration(attempt)):
			}
		}
		if err = fn(); err == nil || !isTransactionConflict(err) {
			return err
		}
	}
	return err
}

// Close checkpoints and closes the database. It is safe to call twice.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}

	db.stmtCacheMu.Lock()
	for _, stmt := range db.stmtCache {
		closeWithLog(stmt, "prepared statement")
	}
	db.stmtCache = make(map[string]*sql.Stmt)
	db.stmtCacheMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// ensureContext adds a 30-second timeout to contexts without a deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// RecordCounts summarizes table sizes.
type RecordCounts struct {
	Positions       int64 `json:"positions"`
	Vessels         int64 `json:"vessels"`
	Zones           int64 `json:"zones"`
	CollisionZones  int64 `json:"collision_zones"`
	WatchEntries    int64 `json:"watch_entries"`
	OldestTimestamp int64 `json:"oldest_timestamp,omitempty"`
	NewestTimestamp int64 `json:"newest_timestamp,omitempty"`
}

// GetRecordCounts returns the row count of every table.
func (db *DB) GetRecordCounts(ctx context.Context) (RecordCounts, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var c RecordCounts
	var oldest, newest sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `SELECT
		(SELECT COUNT(*) FROM positions),
		(SELECT COUNT(*) FROM vessels),
		(SELECT COUNT(*) FROM zones),
		(SELECT COUNT(*) FROM collision_zones),
		(SELECT COUNT(*) FROM watchlist),
		(SELECT MIN(ts) FROM positions),
		(SELECT MAX(ts) FROM positions)`).
		Scan(&c.Positions, &c.Vessels, &c.Zones, &c.CollisionZones, &c.WatchEntries, &oldest, &newest)
	if err != nil {
		return c, fmt.Errorf("failed to count records: %w", err)
	}
	c.OldestTimestamp = oldest.Int64
	c.NewestTimestamp = newest.Int64
	return c, nil
}

// storedNow is the current UTC time at the microsecond precision DuckDB
// keeps, so values written and read back compare equal.
func storedNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
