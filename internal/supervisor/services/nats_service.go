// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package services

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/shipwatch/internal/logging"
)

// EmbeddedNATS is the lifecycle subset of *eventprocessor.EmbeddedServer.
// The server is already running when handed to the service.
type EmbeddedNATS interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// NATSServerService owns the embedded NATS server's shutdown and watches
// for it dying underneath the transport.
type NATSServerService struct {
	server          EmbeddedNATS
	shutdownTimeout time.Duration
	checkInterval   time.Duration
	name            string
}

// NewNATSServerService wraps a started embedded server.
func NewNATSServerService(server EmbeddedNATS, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		checkInterval:   5 * time.Second,
		name:            "nats-server",
	}
}

// Serve blocks until ctx is canceled, then shuts the server down. A server
// that stops on its own cannot be restarted in place, so the service
// reports it and is not restarted.
func (s *NATSServerService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				logging.Warn().Err(err).Msg("Embedded NATS shutdown incomplete")
			}
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				logging.Error().Msg("Embedded NATS server stopped unexpectedly")
				return suture.ErrDoNotRestart
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *NATSServerService) String() string {
	return s.name
}
