// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type mockEmbeddedNATS struct {
	running   atomic.Bool
	shutdowns atomic.Int32
}

func (m *mockEmbeddedNATS) Shutdown(context.Context) error {
	m.shutdowns.Add(1)
	m.running.Store(false)
	return nil
}

func (m *mockEmbeddedNATS) IsRunning() bool { return m.running.Load() }

func TestNATSServerService_ShutdownOnCancel(t *testing.T) {
	var _ suture.Service = (*NATSServerService)(nil)

	srv := &mockEmbeddedNATS{}
	srv.running.Store(true)
	svc := NewNATSServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}
	if srv.shutdowns.Load() != 1 {
		t.Errorf("expected 1 shutdown, got %d", srv.shutdowns.Load())
	}
}

func TestNATSServerService_DetectsDeadServer(t *testing.T) {
	srv := &mockEmbeddedNATS{}
	svc := NewNATSServerService(srv, time.Second)
	svc.checkInterval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Errorf("expected ErrDoNotRestart, got %v", err)
	}
	if svc.String() != "nats-server" {
		t.Errorf("unexpected name %q", svc.String())
	}
}
