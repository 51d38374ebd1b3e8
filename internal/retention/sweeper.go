// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package retention

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
)

// DefaultWindow is the amount of history kept behind the newest report.
const DefaultWindow = 12 * time.Hour

// ErrNilStore is returned by NewSweeper without a store.
var ErrNilStore = errors.New("retention: store is required")

// Store is the slice of the position history the sweeper needs.
type Store interface {
	MaxTimestamp(ctx context.Context) (ts int64, ok bool, err error)
	DeleteBefore(ctx context.Context, cutoff int64) (int64, error)
}

// Config controls the sweep cadence and window.
type Config struct {
	Interval time.Duration
	Window   time.Duration
	// Timeout bounds a single sweep.
	Timeout time.Duration
}

// DefaultConfig sweeps once a minute with a 12h window.
func DefaultConfig() Config {
	return Config{
		Interval: time.Minute,
		Window:   DefaultWindow,
		Timeout:  30 * time.Second,
	}
}

// Stats describes the most recent sweep.
type Stats struct {
	Runs         int64     `json:"runs"`
	Failures     int64     `json:"failures"`
	TotalDeleted int64     `json:"total_deleted"`
	LastDeleted  int64     `json:"last_deleted"`
	LastCutoff   int64     `json:"last_cutoff"`
	LastRun      time.Time `json:"last_run"`
	LastError    string    `json:"last_error,omitempty"`
}

// Sweeper deletes position history older than the window.
type Sweeper struct {
	store  Store
	cfg    Config
	logger zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// NewSweeper creates a sweeper. Zero config fields take their defaults.
func NewSweeper(store Store, cfg Config) (*Sweeper, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Sweeper{
		store:  store,
		cfg:    cfg,
		logger: logging.WithComponent("retention"),
	}, nil
}

// Serve sweeps on every tick until ctx is cancelled. A failed sweep is
// retried on the next tick.
func (s *Sweeper) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.cfg.Interval).
		Dur("window", s.cfg.Window).
		Msg("Retention sweeper started")

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Retention sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
			if _, err := s.Sweep(sweepCtx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("Retention sweep failed")
			}
			cancel()
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *Sweeper) String() string {
	return "retention-sweeper"
}

// Sweep runs one retention pass and returns the number of deleted rows.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	start := time.Now()

	newest, ok, err := s.store.MaxTimestamp(ctx)
	if err != nil {
		err = fmt.Errorf("read newest timestamp: %w", err)
		s.record(0, 0, start, err)
		return 0, err
	}
	if !ok {
		s.record(0, 0, start, nil)
		return 0, nil
	}

	cutoff := newest - int64(s.cfg.Window/time.Second)
	deleted, err := s.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		err = fmt.Errorf("delete before %d: %w", cutoff, err)
		s.record(0, cutoff, start, err)
		return 0, err
	}
	s.record(deleted, cutoff, start, nil)

	if deleted > 0 {
		s.logger.Info().
			Int64("deleted", deleted).
			Int64("cutoff", cutoff).
			Dur("duration", time.Since(start)).
			Msg("Retention sweep removed positions")
	}
	return deleted, nil
}

func (s *Sweeper) record(deleted, cutoff int64, at time.Time, err error) {
	metrics.RecordRetentionSweep(deleted, cutoff, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Runs++
	s.stats.LastRun = at
	if err != nil {
		s.stats.Failures++
		s.stats.LastError = err.Error()
		return
	}
	s.stats.LastError = ""
	s.stats.LastDeleted = deleted
	s.stats.TotalDeleted += deleted
	if cutoff != 0 {
		s.stats.LastCutoff = cutoff
	}
}

// Stats returns a copy of the sweep counters.
func (s *Sweeper) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
