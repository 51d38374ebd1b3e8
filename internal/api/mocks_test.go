// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shipwatch/internal/auth"
	"github.com/tomtom215/shipwatch/internal/cache"
	"github.com/tomtom215/shipwatch/internal/database"
	"github.com/tomtom215/shipwatch/internal/detection"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/notify"
	"github.com/tomtom215/shipwatch/internal/replay"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// ========================================
// Mock stores
// ========================================

type mockStore struct {
	mu         sync.Mutex
	zones      map[string]models.ZoneOfInterest
	collisions map[string]models.CollisionZone
	watches    map[string]map[string]bool
	history    []models.PositionReport
	lastQuery  database.HistoryQuery
	failWith   error
	pingErr    error
}

func newMockStore() *mockStore {
	return &mockStore{
		zones:      make(map[string]models.ZoneOfInterest),
		collisions: make(map[string]models.CollisionZone),
		watches:    make(map[string]map[string]bool),
	}
}

func (m *mockStore) GetZone(_ context.Context, owner string) (models.ZoneOfInterest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return models.ZoneOfInterest{}, m.failWith
	}
	z, ok := m.zones[owner]
	if !ok {
		return z, database.ErrNotFound
	}
	return z, nil
}

func (m *mockStore) SaveZone(_ context.Context, z models.ZoneOfInterest) (models.ZoneOfInterest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return z, false, m.failWith
	}
	now := time.Now().UTC()
	existing, ok := m.zones[z.OwnerID]
	if ok {
		z.ID, z.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		z.ID, z.CreatedAt = "zone-"+z.OwnerID, now
	}
	z.UpdatedAt = now
	m.zones[z.OwnerID] = z
	return z, !ok, nil
}

func (m *mockStore) DeleteZone(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.zones[owner]; !ok {
		return database.ErrNotFound
	}
	delete(m.zones, owner)
	return nil
}

func (m *mockStore) GetCollisionZone(_ context.Context, owner string) (models.CollisionZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.collisions[owner]
	if !ok {
		return z, database.ErrNotFound
	}
	return z, nil
}

func (m *mockStore) SaveCollisionZone(_ context.Context, z models.CollisionZone) (models.CollisionZone, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.collisions[z.OwnerID]
	if ok {
		z.ID, z.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		z.ID, z.CreatedAt = "cz-"+z.OwnerID, time.Now().UTC()
	}
	m.collisions[z.OwnerID] = z
	return z, !ok, nil
}

func (m *mockStore) DeleteCollisionZone(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collisions[owner]; !ok {
		return database.ErrNotFound
	}
	delete(m.collisions, owner)
	return nil
}

func (m *mockStore) AddWatch(_ context.Context, sub, mmsi string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.watches[sub] == nil {
		m.watches[sub] = make(map[string]bool)
	}
	m.watches[sub][mmsi] = true
	return nil
}

func (m *mockStore) RemoveWatch(_ context.Context, sub, mmsi string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if !m.watches[sub][mmsi] {
		return database.ErrNotFound
	}
	delete(m.watches[sub], mmsi)
	return nil
}

func (m *mockStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *mockStore) LatestPosition(_ context.Context, mmsi string) (models.PositionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best models.PositionReport
	found := false
	for _, r := range m.history {
		if r.MMSI == mmsi && (!found || r.Timestamp > best.Timestamp) {
			best, found = r, true
		}
	}
	if !found {
		return best, database.ErrNotFound
	}
	return best, nil
}

func (m *mockStore) QueryPositions(_ context.Context, q database.HistoryQuery) ([]models.PositionReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []models.PositionReport
	for _, r := range m.history {
		if len(q.MMSIs) > 0 && r.MMSI != q.MMSIs[0] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *mockStore) GetVessel(_ context.Context, mmsi string) (models.VesselStaticInfo, error) {
	return models.VesselStaticInfo{}, database.ErrNotFound
}

// ========================================
// Test fixture
// ========================================

type testEnv struct {
	store     *mockStore
	speed     *replay.SpeedControl
	rules     *detection.RuleEngine
	positions *cache.PositionCache
	registry  *cache.VesselRegistry
	watchers  *notify.WatchList
	handler   *Handler
	server    http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	speed, err := replay.NewSpeedControl(1)
	if err != nil {
		t.Fatalf("NewSpeedControl: %v", err)
	}
	env := &testEnv{
		store:     newMockStore(),
		speed:     speed,
		positions: cache.NewPositionCache(4, 5),
		registry:  cache.NewVesselRegistry(),
		watchers:  notify.NewWatchList(),
	}
	env.rules = detection.NewRuleEngine(env.registry, env.positions, detection.DefaultRuleConfig())
	env.handler = NewHandler(Deps{
		Speed:          env.speed,
		Zones:          env.store,
		Rules:          env.rules,
		Watches:        env.store,
		Watchers:       env.watchers,
		History:        env.store,
		Positions:      env.positions,
		Vessels:        env.registry,
		Engine:         env.rules,
		TransportKind:  "memory",
		AllowedOrigins: []string{"*"},
	})

	authMw := auth.NewMiddleware(auth.ModeNone, nil)
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	env.server = NewRouter(env.handler, authMw, NewChiMiddleware(cfg)).SetupChi()
	return env
}

// do performs a request as subscriber sub ("" for anonymous).
func (env *testEnv) do(t *testing.T, method, path, sub, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sub != "" {
		req.Header.Set(auth.SubscriberHeader, sub)
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

// envelope is the decoded APIResponse with Data left raw.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Error    *models.APIError `json:"error"`
	Metadata models.Metadata  `json:"metadata"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("Failed to decode data %s: %v", env.Data, err)
		}
	}
	return env
}

var errBoom = errors.New("boom")

