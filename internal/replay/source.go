// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
	"github.com/tomtom215/shipwatch/internal/models"
)

// ErrSourceUnavailable is returned when the replay file cannot be opened.
var ErrSourceUnavailable = errors.New("replay source unavailable")

// Publisher receives each parsed report in file order.
type Publisher interface {
	PublishPosition(ctx context.Context, report models.PositionReport) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, report models.PositionReport) error

// PublishPosition calls f.
func (f PublisherFunc) PublishPosition(ctx context.Context, report models.PositionReport) error {
	return f(ctx, report)
}

// SourceConfig configures a replay Source.
type SourceConfig struct {
	// Path of the historical CSV file.
	Path string

	// Resume skips lines already published according to the checkpoint store.
	Resume bool

	// Loop restarts from the first record at end of file.
	Loop bool

	// CheckpointEvery saves progress after this many published records.
	// Zero disables periodic checkpoints.
	CheckpointEvery int
}

// Sleeper waits for d or until ctx is done. It reports whether the full
// duration elapsed.
type Sleeper func(ctx context.Context, d time.Duration) bool

// timerSleep is the production Sleeper.
func timerSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// SourceOption customises a Source.
type SourceOption func(*Source)

// WithSleeper replaces the timer based wait, mainly for tests.
func WithSleeper(s Sleeper) SourceOption {
	return func(src *Source) { src.sleep = s }
}

// WithCheckpointStore enables checkpointing and resume.
func WithCheckpointStore(store CheckpointStore) SourceOption {
	return func(src *Source) { src.checkpoints = store }
}

// SourceStats are cumulative counters for a Source.
type SourceStats struct {
	Published     int64 `json:"published"`
	ParseErrors   int64 `json:"parse_errors"`
	PublishErrors int64 `json:"publish_errors"`
	OutOfOrder    int64 `json:"out_of_order"`
	Passes        int64 `json:"passes"`
	LastTimestamp int64 `json:"last_timestamp"`
}

// Source replays a CSV file of position reports with timestamp-derived pacing.
type Source struct {
	cfg         SourceConfig
	speed       *SpeedControl
	pub         Publisher
	sleep       Sleeper
	checkpoints CheckpointStore
	logger      zerolog.Logger

	published     atomic.Int64
	parseErrors   atomic.Int64
	publishErrors atomic.Int64
	outOfOrder    atomic.Int64
	passes        atomic.Int64
	lastTimestamp atomic.Int64
}

// NewSource creates a Source. speed is shared with the admin API.
func NewSource(cfg SourceConfig, speed *SpeedControl, pub Publisher, opts ...SourceOption) *Source {
	s := &Source{
		cfg:    cfg,
		speed:  speed,
		pub:    pub,
		sleep:  timerSleep,
		logger: logging.WithComponent("replay"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDelay caps a single inter-record wait.
const MaxDelay = time.Duration(math.MaxInt64)

// DelayFor returns the wait between a record stamped prev and the next one
// stamped cur at the given speed factor. outOfOrder reports cur < prev, in
// which case the delay is zero.
func DelayFor(prev, cur int64, factor float64) (delay time.Duration, outOfOrder bool) {
	if cur < prev {
		return 0, true
	}
	if factor <= 0 {
		factor = 1
	}
	ns := float64(cur-prev) * 1000 / factor * float64(time.Millisecond)
	if ns >= float64(MaxDelay) {
		return MaxDelay, false
	}
	return time.Duration(ns), false
}

// Run replays the file until EOF, or forever in loop mode. Cancellation is a
// normal stop and returns nil. Only an unopenable file returns an error.
func (s *Source) Run(ctx context.Context) error {
	name := filepath.Base(s.cfg.Path)
	for {
		var skip int64
		if s.cfg.Resume && s.checkpoints != nil {
			cp, ok, err := s.checkpoints.Load(name)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Checkpoint unavailable, replaying from start")
			} else if ok {
				skip = cp.Line
				s.logger.Info().Int64("line", cp.Line).Int64("ts", cp.Timestamp).Msg("Resuming replay from checkpoint")
			}
		}

		done, err := s.runOnce(ctx, name, skip)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		s.passes.Add(1)
		if !s.cfg.Loop {
			return nil
		}
		if s.checkpoints != nil {
			if err := s.checkpoints.Delete(name); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to reset checkpoint for next pass")
			}
		}
		s.logger.Info().Int64("passes", s.passes.Load()).Msg("Replay reached end of file, looping")
	}
}

// runOnce performs a single pass. done is false when ctx stopped the pass.
func (s *Source) runOnce(ctx context.Context, name string, skip int64) (done bool, err error) {
	f, err := os.Open(s.cfg.Path)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	s.logger.Info().Str("path", s.cfg.Path).Float64("speed", s.speed.Get()).Msg("Replay started")

	cr := newReader(f)
	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, fmt.Errorf("%w: read header: %w", ErrSourceUnavailable, err)
	}

	var (
		line    int64
		prev    int64
		hasPrev bool
		sinceCP int
	)
	for {
		if ctx.Err() != nil {
			return false, nil
		}

		fields, readErr := cr.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if line <= skip {
			continue
		}

		var report models.PositionReport
		if readErr == nil {
			report, readErr = ParsePositionRecord(fields)
		}
		if readErr != nil {
			s.parseErrors.Add(1)
			metrics.RecordReplaySkipped("parse")
			s.logger.Warn().Err(readErr).Int64("line", line+1).Msg("Skipping malformed record")
			continue
		}

		if hasPrev {
			delay, outOfOrder := DelayFor(prev, report.Timestamp, s.speed.Get())
			if outOfOrder {
				s.outOfOrder.Add(1)
				metrics.ReplayOutOfOrder.Inc()
				s.logger.Warn().
					Str("mmsi", report.MMSI).
					Int64("prev_ts", prev).
					Int64("ts", report.Timestamp).
					Msg("Out-of-order timestamp, no delay applied")
			}
			if !s.sleep(ctx, delay) || ctx.Err() != nil {
				return false, nil
			}
		}
		prev = report.Timestamp
		hasPrev = true

		if err := s.pub.PublishPosition(ctx, report); err != nil {
			s.publishErrors.Add(1)
			metrics.RecordReplaySkipped("publish")
			s.logger.Error().Err(err).Str("mmsi", report.MMSI).Msg("Failed to publish position")
		} else {
			s.published.Add(1)
			metrics.RecordReplayPublished()
		}
		s.lastTimestamp.Store(report.Timestamp)

		sinceCP++
		if s.checkpoints != nil && s.cfg.CheckpointEvery > 0 && sinceCP >= s.cfg.CheckpointEvery {
			sinceCP = 0
			s.saveCheckpoint(name, line, report.Timestamp)
		}
	}

	if s.checkpoints != nil && sinceCP > 0 {
		s.saveCheckpoint(name, line, prev)
	}
	s.logger.Info().
		Int64("published", s.published.Load()).
		Int64("parse_errors", s.parseErrors.Load()).
		Msg("Replay reached end of file")
	return true, nil
}

func (s *Source) saveCheckpoint(name string, line, ts int64) {
	if err := s.checkpoints.Save(Checkpoint{Source: name, Line: line, Timestamp: ts}); err != nil {
		s.logger.Warn().Err(err).Int64("line", line).Msg("Failed to save replay checkpoint")
	}
}

// Stats returns a snapshot of the counters.
func (s *Source) Stats() SourceStats {
	return SourceStats{
		Published:     s.published.Load(),
		ParseErrors:   s.parseErrors.Load(),
		PublishErrors: s.publishErrors.Load(),
		OutOfOrder:    s.outOfOrder.Load(),
		Passes:        s.passes.Load(),
		LastTimestamp: s.lastTimestamp.Load(),
	}
}

// Speed returns the shared speed control.
func (s *Source) Speed() *SpeedControl {
	return s.speed
}

// Serve implements suture.Service.
func (s *Source) Serve(ctx context.Context) error {
	return s.Run(ctx)
}

// String names the service in supervisor logs.
func (s *Source) String() string {
	return "replay-source"
}
