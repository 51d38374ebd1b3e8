// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shipwatch/internal/models"
)

func fastRouterConfig() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.CloseTimeout = time.Second
	cfg.RetryMaxRetries = 1
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = time.Millisecond
	return cfg
}

func startRouter(t *testing.T, r *Router) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("router did not start")
	}
	return func() {
		cancel()
		<-done
	}
}

func TestMemoryTransport_DeliversInOrderAndDeduplicates(t *testing.T) {
	pubsub := NewMemoryPubSub(64, nil)
	cfg := fastRouterConfig()
	router, err := NewRouter(&cfg, nil, nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	var mu sync.Mutex
	var got []models.PositionReport
	router.AddConsumerHandler("ingest", PositionsTopic, pubsub, func(msg *message.Message) error {
		r, err := DecodePosition(msg)
		if err != nil {
			return nil
		}
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
		return nil
	})
	stop := startRouter(t, router)
	defer stop()

	pp, err := NewPositionPublisher(pubsub, "")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, r := range []models.PositionReport{
		testReport("219000001", 100),
		testReport("219000001", 100), // republished
		testReport("219000002", 101),
		testReport("219000001", 102),
	} {
		if err := pp.PublishPosition(ctx, r); err != nil {
			t.Fatalf("PublishPosition() error = %v", err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n >= 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("delivered %d reports, want 3", len(got))
	}
	wantTS := []int64{100, 101, 102}
	for i, r := range got {
		if r.Timestamp != wantTS[i] {
			t.Errorf("report %d ts = %d, want %d", i, r.Timestamp, wantTS[i])
		}
	}
	if s := router.Stats(); s.Deduplicated != 1 || s.Handlers != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRouter_PoisonQueueAfterRetries(t *testing.T) {
	pubsub := NewMemoryPubSub(64, nil)
	cfg := fastRouterConfig()
	cfg.DeduplicationEnabled = false
	router, err := NewRouter(&cfg, pubsub, nil)
	if err != nil {
		t.Fatal(err)
	}

	var attempts int
	var mu sync.Mutex
	router.AddConsumerHandler("failing", PositionsTopic, pubsub, func(*message.Message) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("store unavailable")
	})

	poisoned, err := pubsub.Subscribe(context.Background(), PoisonTopic)
	if err != nil {
		t.Fatal(err)
	}
	stop := startRouter(t, router)
	defer stop()

	pp, _ := NewPositionPublisher(pubsub, "")
	r := testReport("219000009", 500)
	published := make(chan error, 1)
	go func() { published <- pp.PublishPosition(context.Background(), r) }()

	select {
	case msg := <-poisoned:
		msg.Ack()
		if msg.UUID != MessageIDFor(r) {
			t.Errorf("poisoned UUID = %s", msg.UUID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("message never reached the poison queue")
	}
	if err := <-published; err != nil {
		t.Fatalf("PublishPosition() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 (initial + 1 retry)", attempts)
	}
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	pubsub := NewMemoryPubSub(64, nil)
	cfg := fastRouterConfig()
	router, _ := NewRouter(&cfg, pubsub, nil)

	handled := make(chan string, 4)
	router.AddConsumerHandler("panicky", PositionsTopic, pubsub, func(msg *message.Message) error {
		r, _ := DecodePosition(msg)
		if r.MMSI == "666" {
			panic("bad record")
		}
		handled <- r.MMSI
		return nil
	})
	stop := startRouter(t, router)
	defer stop()

	pp, _ := NewPositionPublisher(pubsub, "")
	_ = pp.PublishPosition(context.Background(), testReport("666", 1))
	_ = pp.PublishPosition(context.Background(), testReport("777", 2))

	select {
	case mmsi := <-handled:
		if mmsi != "777" {
			t.Errorf("handled %s, want 777", mmsi)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("router stopped processing after a panic")
	}
}

// failingPublisher fails every publish
type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("nats: no responders")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisher_CircuitBreakerShortCircuits(t *testing.T) {
	inner := &failingPublisher{}
	pub, err := WrapPublisher(inner, nil)
	if err != nil {
		t.Fatal(err)
	}
	cfg := DefaultCircuitBreakerConfig("test-publisher")
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Minute
	pub.SetCircuitBreaker(NewCircuitBreaker(cfg))

	pp, _ := NewPositionPublisher(pub, "")
	for i := 0; i < 5; i++ {
		_ = pp.PublishPosition(context.Background(), testReport("219000001", int64(i)))
	}
	if inner.calls != 2 {
		t.Errorf("inner publisher called %d times, want 2 before the breaker opened", inner.calls)
	}
	err = pp.PublishPosition(context.Background(), testReport("219000001", 99))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
}

func TestPublisher_Closed(t *testing.T) {
	pub, _ := WrapPublisher(NewMemoryPubSub(1, nil), nil)
	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if !pub.IsClosed() {
		t.Error("IsClosed() = false")
	}
	msg, _ := NewPositionMessage(testReport("1", 1))
	if err := pub.Publish(PositionsTopic, msg); !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Publish after close = %v", err)
	}
}

func TestNewPositionPublisher_Nil(t *testing.T) {
	if _, err := NewPositionPublisher(nil, ""); !errors.Is(err, ErrNilPublisher) {
		t.Errorf("error = %v", err)
	}
	if _, err := WrapPublisher(nil, nil); !errors.Is(err, ErrNilPublisher) {
		t.Errorf("error = %v", err)
	}
}
