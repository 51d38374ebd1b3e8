// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package services

import (
	"context"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/shipwatch/internal/logging"
)

// RunFunc is a blocking run loop, such as (*eventprocessor.Router).Run.
type RunFunc func(ctx context.Context) error

// RunOnceService supervises a component that must not be started again
// after it returns on its own. suture restarts any service that returns,
// which would replay a finished file or rerun a closed Watermill router.
type RunOnceService struct {
	name           string
	run            RunFunc
	ready          <-chan struct{}
	restartOnError bool
}

// RunOnceOption configures a RunOnceService.
type RunOnceOption func(*RunOnceService)

// WaitFor delays the run until ready is closed. The replay source waits on
// the router's Running channel so nothing is published before the
// consumer subscribes.
func WaitFor(ready <-chan struct{}) RunOnceOption {
	return func(s *RunOnceService) {
		s.ready = ready
	}
}

// RestartOnError lets suture restart the run after a failure. Normal
// completion still ends the service.
func RestartOnError() RunOnceOption {
	return func(s *RunOnceService) {
		s.restartOnError = true
	}
}

// NewRunOnceService wraps run under name.
func NewRunOnceService(name string, run RunFunc, opts ...RunOnceOption) *RunOnceService {
	s := &RunOnceService{name: name, run: run}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve implements suture.Service.
func (s *RunOnceService) Serve(ctx context.Context) error {
	if s.ready != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.ready:
		}
	}

	err := s.run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		if s.restartOnError {
			return err
		}
		logging.Error().Err(err).Str("service", s.name).Msg("Service failed and will not be restarted")
		return suture.ErrDoNotRestart
	}
	logging.Info().Str("service", s.name).Msg("Service completed")
	return suture.ErrDoNotRestart
}

// String names the service in supervisor logs.
func (s *RunOnceService) String() string {
	return s.name
}
