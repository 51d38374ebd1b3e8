// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/shipwatch/internal/cache"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/eventprocessor"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

type mockStore struct {
	mu       sync.Mutex
	inserted []models.PositionReport
	err      error
}

func (m *mockStore) InsertPosition(_ context.Context, r models.PositionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, r)
	return nil
}

type mockNotifier struct {
	mu         sync.Mutex
	updates    []models.VesselUpdate
	violations []models.Violation
	calls      []string
}

func (m *mockNotifier) Broadcast(u models.VesselUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, u)
	m.calls = append(m.calls, "broadcast")
}

func (m *mockNotifier) NotifyOwners(vs []models.Violation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.violations = append(m.violations, vs...)
	m.calls = append(m.calls, "notify")
}

type fixture struct {
	worker   *Worker
	store    *mockStore
	cache    *cache.PositionCache
	registry *cache.VesselRegistry
	engine   *detection.RuleEngine
	notifier *mockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    &mockStore{},
		cache:    cache.NewPositionCache(4, 1),
		registry: cache.NewVesselRegistry(),
		notifier: &mockNotifier{},
	}
	f.engine = detection.NewRuleEngine(f.registry, f.cache, detection.DefaultRuleConfig())
	f.worker = NewWorker(Deps{
		Store:    f.store,
		Cache:    f.cache,
		Rules:    f.engine,
		Notifier: f.notifier,
		Vessels:  f.registry,
	})
	return f
}

func report(mmsi string, ts int64, lat, lon, sog float64) models.PositionReport {
	return models.PositionReport{
		MMSI:      mmsi,
		SOG:       sog,
		COG:       90,
		Latitude:  lat,
		Longitude: lon,
		Timestamp: ts,
	}
}

func mustMessage(t *testing.T, r models.PositionReport) *message.Message {
	t.Helper()
	msg, err := eventprocessor.NewPositionMessage(r)
	if err != nil {
		t.Fatalf("NewPositionMessage: %v", err)
	}
	return msg
}

func TestWorker_HandleHappyPath(t *testing.T) {
	f := newFixture(t)
	f.registry.Set("219000001", models.ShipTypeCargo)

	r := report("219000001", 1000, 55.0, 12.0, 10)
	if err := f.worker.Handle(mustMessage(t, r)); err != nil {
		t.Fatalf("Handle returned %v", err)
	}

	if len(f.store.inserted) != 1 {
		t.Fatalf("persisted %d reports, want 1", len(f.store.inserted))
	}
	got, ok := f.cache.Get("219000001")
	if !ok || got.Timestamp != 1000 {
		t.Fatalf("cache entry = %+v, %v", got, ok)
	}
	if len(f.notifier.updates) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(f.notifier.updates))
	}
	if f.notifier.updates[0].ShipType != models.ShipTypeCargo {
		t.Errorf("ShipType = %q, want cargo", f.notifier.updates[0].ShipType)
	}
	if len(f.notifier.violations) != 0 {
		t.Errorf("violations = %d, want 0", len(f.notifier.violations))
	}

	stats := f.worker.Stats()
	if stats.Processed != 1 || stats.CacheUpdates != 1 || stats.LastTimestamp != 1000 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestWorker_UnknownVesselTypeBroadcast(t *testing.T) {
	f := newFixture(t)
	_ = f.worker.Handle(mustMessage(t, report("219000002", 10, 55, 12, 0)))
	if got := f.notifier.updates[0].ShipType; got != models.ShipTypeUnknown {
		t.Errorf("ShipType = %q, want unknown", got)
	}
}

func TestWorker_DecodeErrorIsAckedAndCounted(t *testing.T) {
	f := newFixture(t)

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	if err := f.worker.Handle(msg); err != nil {
		t.Fatalf("Handle returned %v, want nil", err)
	}

	stats := f.worker.Stats()
	if stats.DecodeErrors != 1 || stats.Processed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if len(f.notifier.updates) != 0 {
		t.Error("undecodable message must not be broadcast")
	}
}

func TestWorker_PersistFailureContinues(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("disk full")

	if err := f.worker.Handle(mustMessage(t, report("219000003", 50, 55, 12, 3))); err != nil {
		t.Fatalf("Handle returned %v", err)
	}

	if _, ok := f.cache.Get("219000003"); !ok {
		t.Error("cache not updated after persist failure")
	}
	if len(f.notifier.updates) != 1 {
		t.Error("update not broadcast after persist failure")
	}
	if got := f.worker.Stats().PersistErrors; got != 1 {
		t.Errorf("PersistErrors = %d, want 1", got)
	}
}

func TestWorker_NilStoreSkipsPersistence(t *testing.T) {
	c := cache.NewPositionCache(2, 1)
	n := &mockNotifier{}
	w := NewWorker(Deps{
		Cache:    c,
		Rules:    detection.NewRuleEngine(nil, c, detection.RuleConfig{}),
		Notifier: n,
	})

	w.Process(context.Background(), report("219000004", 1, 55, 12, 0))
	if c.Len() != 1 || len(n.updates) != 1 {
		t.Errorf("cache=%d updates=%d", c.Len(), len(n.updates))
	}
}

func TestWorker_StaleReportStillBroadcast(t *testing.T) {
	f := newFixture(t)

	_ = f.worker.Handle(mustMessage(t, report("219000005", 200, 55, 12, 1)))
	_ = f.worker.Handle(mustMessage(t, report("219000005", 100, 56, 13, 1)))

	got, _ := f.cache.Get("219000005")
	if got.Timestamp != 200 {
		t.Errorf("cached ts = %d, want 200", got.Timestamp)
	}
	stats := f.worker.Stats()
	if stats.StaleReports != 1 || stats.CacheUpdates != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastTimestamp != 200 {
		t.Errorf("LastTimestamp = %d, want 200", stats.LastTimestamp)
	}
	if len(f.notifier.updates) != 2 {
		t.Errorf("broadcasts = %d, want 2", len(f.notifier.updates))
	}
}

func TestWorker_ViolationsNotifiedAfterBroadcast(t *testing.T) {
	f := newFixture(t)
	err := f.engine.AddZone(models.ZoneOfInterest{
		ID:           "z1",
		OwnerID:      "alice",
		Name:         "harbour",
		CenterLat:    55.0,
		CenterLon:    12.0,
		RadiusMeters: 5000,
		Constraints: []models.Constraint{
			{Kind: models.ConstraintZoneEntry},
			{Kind: models.ConstraintSpeedAbove, Value: "5"},
		},
	})
	if err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	_ = f.worker.Handle(mustMessage(t, report("219000006", 10, 55.0, 12.0, 12)))

	if len(f.notifier.violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(f.notifier.violations))
	}
	if f.notifier.violations[0].Kind != models.ViolationKind(models.ConstraintZoneEntry) {
		t.Errorf("first violation = %q, want zone_entry", f.notifier.violations[0].Kind)
	}
	want := []string{"broadcast", "notify"}
	if len(f.notifier.calls) != 2 || f.notifier.calls[0] != want[0] || f.notifier.calls[1] != want[1] {
		t.Errorf("call order = %v, want %v", f.notifier.calls, want)
	}
	if got := f.worker.Stats().Violations; got != 2 {
		t.Errorf("Violations = %d, want 2", got)
	}

	// Still inside and still fast: only the level-triggered constraint fires.
	_ = f.worker.Handle(mustMessage(t, report("219000006", 20, 55.0, 12.001, 12)))
	if len(f.notifier.violations) != 3 {
		t.Errorf("violations = %d, want 3", len(f.notifier.violations))
	}
}

func TestWorker_LateReportDoesNotDriveZoneState(t *testing.T) {
	f := newFixture(t)
	err := f.engine.AddZone(models.ZoneOfInterest{
		ID:           "z1",
		OwnerID:      "alice",
		Name:         "origin",
		CenterLat:    0,
		CenterLon:    0,
		RadiusMeters: 500,
		Constraints: []models.Constraint{
			{Kind: models.ConstraintZoneEntry},
			{Kind: models.ConstraintZoneExit},
		},
	})
	if err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	// ts 200 (outside) arrives after ts 300 (inside).
	arrivals := []models.PositionReport{
		report("111000111", 100, 0, 0.02, 8),
		report("111000111", 300, 0, 0, 8),
		report("111000111", 200, 0, 0.02, 8),
		report("111000111", 400, 0, 0.001, 8),
	}
	for _, r := range arrivals {
		_ = f.worker.Handle(mustMessage(t, r))
	}

	got, _ := f.cache.Get("111000111")
	if got.Timestamp != 400 {
		t.Errorf("cached ts = %d, want 400", got.Timestamp)
	}
	if len(f.notifier.violations) != 1 {
		t.Fatalf("violations = %d, want 1", len(f.notifier.violations))
	}
	if f.notifier.violations[0].Kind != models.ViolationKind(models.ConstraintZoneEntry) {
		t.Errorf("violation = %q, want zone_entry", f.notifier.violations[0].Kind)
	}
	if len(f.notifier.updates) != len(arrivals) {
		t.Errorf("broadcasts = %d, want %d", len(f.notifier.updates), len(arrivals))
	}
	if got := f.worker.Stats().StaleReports; got != 1 {
		t.Errorf("StaleReports = %d, want 1", got)
	}
}

func TestWorker_RedeliveryDoesNotRepeatViolations(t *testing.T) {
	f := newFixture(t)
	err := f.engine.AddZone(models.ZoneOfInterest{
		ID:           "z1",
		OwnerID:      "alice",
		Name:         "harbour",
		CenterLat:    55.0,
		CenterLon:    12.0,
		RadiusMeters: 5000,
		Constraints:  []models.Constraint{{Kind: models.ConstraintSpeedAbove, Value: "5"}},
	})
	if err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	r := report("219000007", 10, 55.0, 12.0, 12)
	_ = f.worker.Handle(mustMessage(t, r))
	_ = f.worker.Handle(mustMessage(t, r))

	if len(f.notifier.violations) != 1 {
		t.Errorf("violations = %d, want 1", len(f.notifier.violations))
	}
}

func TestWorker_ThroughMemoryTransport(t *testing.T) {
	f := newFixture(t)
	pubsub := eventprocessor.NewMemoryPubSub(16, logging.NewWatermillLogger())
	defer pubsub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := pubsub.Subscribe(ctx, eventprocessor.PositionsTopic)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			msg := <-msgs
			_ = f.worker.Handle(msg)
			msg.Ack()
		}
	}()

	pub, err := eventprocessor.NewPositionPublisher(pubsub, "")
	if err != nil {
		t.Fatalf("NewPositionPublisher: %v", err)
	}
	for i, ts := range []int64{100, 200, 300} {
		r := report("219000007", ts, 55, 12+float64(i)*0.01, 4)
		if err := pub.PublishPosition(ctx, r); err != nil {
			t.Fatalf("PublishPosition: %v", err)
		}
	}
	<-done

	if got := f.worker.Stats().Processed; got != 3 {
		t.Errorf("Processed = %d, want 3", got)
	}
	got, _ := f.cache.Get("219000007")
	if got.Timestamp != 300 {
		t.Errorf("cached ts = %d, want 300", got.Timestamp)
	}
}
