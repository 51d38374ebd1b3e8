// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// mockStream satisfies jetstream.Stream; only the embedded name is used
type mockStream struct {
	jetstream.Stream
	name string
}

// mockJetStream records stream calls
type mockJetStream struct {
	streams   map[string]jetstream.StreamConfig
	created   int
	updated   int
	streamErr error
	createErr error
}

func newMockJetStream() *mockJetStream {
	return &mockJetStream{streams: make(map[string]jetstream.StreamConfig)}
}

func (m *mockJetStream) Stream(_ context.Context, name string) (jetstream.Stream, error) {
	if m.streamErr != nil {
		return nil, m.streamErr
	}
	if _, ok := m.streams[name]; !ok {
		return nil, jetstream.ErrStreamNotFound
	}
	return &mockStream{name: name}, nil
}

func (m *mockJetStream) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created++
	m.streams[cfg.Name] = cfg
	return &mockStream{name: cfg.Name}, nil
}

func (m *mockJetStream) UpdateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	m.updated++
	m.streams[cfg.Name] = cfg
	return &mockStream{name: cfg.Name}, nil
}

func TestNewStreamInitializer_Validation(t *testing.T) {
	cfg := DefaultStreamConfig()
	if _, err := NewStreamInitializer(nil, &cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil js error = %v", err)
	}
	if _, err := NewStreamInitializer(newMockJetStream(), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil config error = %v", err)
	}
	bad := cfg
	bad.Subjects = nil
	if _, err := NewStreamInitializer(newMockJetStream(), &bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("no subjects error = %v", err)
	}
}

func TestStreamInitializer_EnsureStream_CreatesThenUpdates(t *testing.T) {
	js := newMockJetStream()
	cfg := DefaultStreamConfig()
	cfg.MaxAge = 12 * time.Hour

	si, err := NewStreamInitializer(js, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	if si.IsHealthy(context.Background()) {
		t.Error("stream should not exist yet")
	}

	if _, err := si.EnsureStream(context.Background()); err != nil {
		t.Fatalf("EnsureStream() error = %v", err)
	}
	if _, err := si.EnsureStream(context.Background()); err != nil {
		t.Fatalf("second EnsureStream() error = %v", err)
	}
	if js.created != 1 || js.updated != 1 {
		t.Errorf("created=%d updated=%d, want 1 and 1", js.created, js.updated)
	}

	got := js.streams["AIS"]
	if got.Storage != jetstream.FileStorage || got.Retention != jetstream.LimitsPolicy {
		t.Errorf("storage/retention = %v/%v", got.Storage, got.Retention)
	}
	if got.MaxAge != 12*time.Hour || got.Duplicates != 2*time.Minute {
		t.Errorf("max age/duplicates = %v/%v", got.MaxAge, got.Duplicates)
	}
	if !si.IsHealthy(context.Background()) {
		t.Error("stream should be healthy after EnsureStream")
	}
}

func TestStreamInitializer_EnsureStream_Errors(t *testing.T) {
	cfg := DefaultStreamConfig()

	js := newMockJetStream()
	js.createErr = errors.New("insufficient resources")
	si, _ := NewStreamInitializer(js, &cfg)
	if _, err := si.EnsureStream(context.Background()); err == nil {
		t.Error("expected create error")
	}

	js2 := newMockJetStream()
	js2.streamErr = errors.New("connection closed")
	si2, _ := NewStreamInitializer(js2, &cfg)
	if _, err := si2.EnsureStream(context.Background()); err == nil || js2.created != 0 {
		t.Errorf("unexpected lookup error should not create: err=%v created=%d", err, js2.created)
	}
}
