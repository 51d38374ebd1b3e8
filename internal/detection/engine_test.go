// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

// mockVessels implements VesselTypeLookup for testing
type mockVessels map[string]models.ShipType

func (m mockVessels) ShipType(mmsi string) models.ShipType {
	if t, ok := m[mmsi]; ok {
		return t
	}
	return models.ShipTypeUnknown
}

// mockPositions implements PositionLookup for testing
type mockPositions struct {
	mu   sync.RWMutex
	last map[string]models.PositionReport
}

func newMockPositions() *mockPositions {
	return &mockPositions{last: make(map[string]models.PositionReport)}
}

func (m *mockPositions) Get(mmsi string) (models.PositionReport, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.last[mmsi]
	return r, ok
}

func (m *mockPositions) put(r models.PositionReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[r.MMSI] = r
}

// ~0.0045 degrees of latitude is 500 m.
const (
	insideLat  = 0.001
	outsideLat = 0.01
)

func pos(mmsi string, ts int64, lat, lon, sog, cog float64) models.PositionReport {
	return models.PositionReport{MMSI: mmsi, Timestamp: ts, Latitude: lat, Longitude: lon, SOG: sog, COG: cog}
}

func harborZone(owner string, constraints ...models.Constraint) models.ZoneOfInterest {
	return models.ZoneOfInterest{
		ID:           "zone-" + owner,
		OwnerID:      owner,
		Name:         "Harbor " + owner,
		RadiusMeters: 500,
		Constraints:  constraints,
	}
}

func kinds(vs []models.Violation) []models.ViolationKind {
	out := make([]models.ViolationKind, len(vs))
	for i, v := range vs {
		out[i] = v.Kind
	}
	return out
}

func TestEvaluate_EntryExitEdgeTriggered(t *testing.T) {
	e := NewRuleEngine(nil, newMockPositions(), DefaultRuleConfig())
	if err := e.AddZone(harborZone("alice",
		models.Constraint{Kind: models.ConstraintZoneEntry},
		models.Constraint{Kind: models.ConstraintZoneExit},
	)); err != nil {
		t.Fatal(err)
	}

	track := []float64{outsideLat, insideLat, insideLat, outsideLat, outsideLat, insideLat, insideLat}
	var got []models.ViolationKind
	for i, lat := range track {
		got = append(got, kinds(e.Evaluate(pos("111", int64(100+i), lat, 0, 5, 0)))...)
	}

	want := []models.ViolationKind{"zone_entry", "zone_exit", "zone_entry"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("violations = %v, want %v", got, want)
	}
}

func TestEvaluate_ColdStartNoExitWithoutEntry(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("alice", models.Constraint{Kind: models.ConstraintZoneExit}))

	if v := e.Evaluate(pos("111", 1, outsideLat, 0, 0, 0)); len(v) != 0 {
		t.Errorf("vessel never seen inside must not exit: %v", kinds(v))
	}
}

func TestEvaluate_SpeedAboveLevelTriggered(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("alice", models.Constraint{Kind: models.ConstraintSpeedAbove, Value: "10"}))

	speeds := []float64{12, 14, 9, 10, 11}
	fired := 0
	for i, s := range speeds {
		fired += len(e.Evaluate(pos("111", int64(i), insideLat, 0, s, 0)))
	}
	if fired != 3 {
		t.Errorf("speed_above fired %d times, want 3 (12, 14, 11)", fired)
	}

	// Outside the zone speed is not checked.
	if v := e.Evaluate(pos("111", 10, outsideLat, 0, 30, 0)); len(v) != 0 {
		t.Errorf("speed outside zone fired: %v", kinds(v))
	}
}

func TestEvaluate_AttributeConstraints(t *testing.T) {
	vessels := mockVessels{"tanker1": models.ShipTypeTanker, "cargo1": models.ShipTypeCargo}
	e := NewRuleEngine(vessels, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("alice",
		models.Constraint{Kind: models.ConstraintForbiddenVesselType, Value: "Tanker"},
		models.Constraint{Kind: models.ConstraintUnwantedNavStatus, Value: "1"},
		models.Constraint{Kind: models.ConstraintSpeedBelow, Value: "2"},
	))

	tests := []struct {
		name      string
		report    models.PositionReport
		wantKinds string
	}{
		{"tanker anchored and slow", models.PositionReport{MMSI: "tanker1", Latitude: insideLat, NavStatus: 1, SOG: 0.5, Timestamp: 1}, "[forbidden_vessel_type unwanted_nav_status speed_below]"},
		{"cargo underway", models.PositionReport{MMSI: "cargo1", Latitude: insideLat, NavStatus: 0, SOG: 8, Timestamp: 1}, "[]"},
		{"unknown vessel anchored", models.PositionReport{MMSI: "ghost", Latitude: insideLat, NavStatus: 1, SOG: 5, Timestamp: 1}, "[unwanted_nav_status]"},
		{"tanker outside", models.PositionReport{MMSI: "tanker1", Latitude: outsideLat, NavStatus: 1, SOG: 0, Timestamp: 2}, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fmt.Sprint(kinds(e.Evaluate(tt.report)))
			if got != tt.wantKinds {
				t.Errorf("got %s, want %s", got, tt.wantKinds)
			}
		})
	}
}

func TestEvaluate_MalformedConstraintIsNonMatch(t *testing.T) {
	e := NewRuleEngine(mockVessels{"111": models.ShipTypeCargo}, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("alice",
		models.Constraint{Kind: models.ConstraintSpeedAbove, Value: "fast"},
		models.Constraint{Kind: models.ConstraintSpeedBelow, Value: ""},
		models.Constraint{Kind: models.ConstraintForbiddenVesselType, Value: "submarine"},
		models.Constraint{Kind: models.ConstraintUnwantedNavStatus, Value: "moored"},
		models.Constraint{Kind: "teleport", Value: "1"},
	))

	if v := e.Evaluate(pos("111", 1, insideLat, 0, 50, 0)); len(v) != 0 {
		t.Errorf("malformed constraints matched: %v", kinds(v))
	}
}

func TestEvaluate_OrderFollowsRegistrationAndDeclaration(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("zed", models.Constraint{Kind: models.ConstraintSpeedAbove, Value: "1"}, models.Constraint{Kind: models.ConstraintZoneEntry}))
	_ = e.AddZone(harborZone("amy", models.Constraint{Kind: models.ConstraintZoneEntry}))

	vs := e.Evaluate(pos("111", 1, insideLat, 0, 5, 0))
	if len(vs) != 3 {
		t.Fatalf("got %d violations, want 3", len(vs))
	}
	got := []string{vs[0].OwnerID + ":" + string(vs[0].Kind), vs[1].OwnerID + ":" + string(vs[1].Kind), vs[2].OwnerID + ":" + string(vs[2].Kind)}
	want := []string{"zed:speed_above", "zed:zone_entry", "amy:zone_entry"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}

	// Update keeps the registration slot.
	_ = e.UpdateZone(harborZone("zed", models.Constraint{Kind: models.ConstraintSpeedAbove, Value: "1"}))
	vs = e.Evaluate(pos("222", 1, insideLat, 0, 5, 0))
	if len(vs) != 2 || vs[0].OwnerID != "zed" || vs[1].OwnerID != "amy" {
		t.Errorf("update moved zone: %+v", vs)
	}
}

func TestRuleCache_Contract(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())

	if err := e.AddZone(harborZone("alice")); err != nil {
		t.Fatal(err)
	}
	if err := e.AddZone(harborZone("alice")); !errors.Is(err, ErrZoneExists) {
		t.Errorf("duplicate add error = %v, want ErrZoneExists", err)
	}
	if err := e.UpdateZone(harborZone("bob")); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("update unknown error = %v, want ErrZoneNotFound", err)
	}
	if err := e.RemoveCollisionZone("alice"); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("remove unknown collision zone error = %v", err)
	}

	// Removing a zone clears its membership so a re-added zone starts cold.
	_ = e.UpdateZone(harborZone("alice", models.Constraint{Kind: models.ConstraintZoneEntry}))
	if len(e.Evaluate(pos("111", 1, insideLat, 0, 0, 0))) != 1 {
		t.Fatal("expected entry")
	}
	if !e.InsideZone("alice", "111") {
		t.Error("vessel should be inside")
	}
	if err := e.RemoveZone("alice"); err != nil {
		t.Fatal(err)
	}
	if e.InsideZone("alice", "111") {
		t.Error("membership should be dropped with the zone")
	}
	_ = e.AddZone(harborZone("alice", models.Constraint{Kind: models.ConstraintZoneEntry}))
	if len(e.Evaluate(pos("111", 2, insideLat, 0, 0, 0))) != 1 {
		t.Error("re-added zone should see a fresh entry")
	}

	// Caller edits after Add do not leak into the cache.
	z := harborZone("carol", models.Constraint{Kind: models.ConstraintSpeedAbove, Value: "5"})
	_ = e.AddZone(z)
	z.Constraints[0].Value = "500"
	cached, _ := e.Zone("carol")
	if cached.Constraints[0].Value != "5" {
		t.Errorf("cached constraint mutated to %q", cached.Constraints[0].Value)
	}
}

func TestUpdateZone_KeepsMembership(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())
	_ = e.AddZone(harborZone("alice",
		models.Constraint{Kind: models.ConstraintZoneEntry},
		models.Constraint{Kind: models.ConstraintZoneExit},
	))
	if got := kinds(e.Evaluate(pos("111", 1, insideLat, 0, 0, 0))); fmt.Sprint(got) != "[zone_entry]" {
		t.Fatalf("first report = %v, want [zone_entry]", got)
	}

	// Same geometry: still inside, no second entry.
	_ = e.UpdateZone(harborZone("alice",
		models.Constraint{Kind: models.ConstraintZoneEntry},
		models.Constraint{Kind: models.ConstraintZoneExit},
	))
	if got := e.Evaluate(pos("111", 2, insideLat, 0, 0, 0)); len(got) != 0 {
		t.Errorf("after replace = %v, want none", kinds(got))
	}

	// Shrunk below the vessel's offset: the next report is an exit.
	shrunk := harborZone("alice",
		models.Constraint{Kind: models.ConstraintZoneEntry},
		models.Constraint{Kind: models.ConstraintZoneExit},
	)
	shrunk.RadiusMeters = 50
	_ = e.UpdateZone(shrunk)
	if got := kinds(e.Evaluate(pos("111", 3, insideLat, 0, 0, 0))); fmt.Sprint(got) != "[zone_exit]" {
		t.Errorf("after shrink = %v, want [zone_exit]", got)
	}
}

func TestLoadZones_DropsDuplicateOwners(t *testing.T) {
	e := NewRuleEngine(nil, nil, DefaultRuleConfig())
	n := e.LoadZones([]models.ZoneOfInterest{harborZone("a"), harborZone("b"), harborZone("a")})
	if n != 2 {
		t.Errorf("loaded %d zones, want 2", n)
	}
	if st := e.Stats(); st.ZonesOfInterest != 2 {
		t.Errorf("stats zones = %d", st.ZonesOfInterest)
	}
}

func collisionZone(owner string) models.CollisionZone {
	return models.CollisionZone{ID: "cz-" + owner, OwnerID: owner, Name: "Fairway", RadiusMeters: 5000}
}

func TestEvaluate_CollisionProximity(t *testing.T) {
	positions := newMockPositions()
	e := NewRuleEngine(nil, positions, DefaultRuleConfig())
	_ = e.AddCollisionZone(collisionZone("harbormaster"))

	a := pos("aaa", 1000, 0, 0, 0, 0)
	positions.put(a)
	if v := e.Evaluate(a); len(v) != 0 {
		t.Fatalf("single vessel should not alert: %v", kinds(v))
	}

	// 0.003 deg is ~334 m, inside the 500 m proximity threshold.
	b := pos("bbb", 1010, 0.003, 0, 0, 0)
	positions.put(b)
	vs := e.Evaluate(b)
	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1", len(vs))
	}
	v := vs[0]
	if v.Kind != models.ViolationCollision || v.OwnerID != "harbormaster" {
		t.Errorf("unexpected violation %+v", v)
	}
	if v.Vessel.MMSI != "bbb" || v.Other == nil || v.Other.MMSI != "aaa" {
		t.Errorf("violation should name both vessels: %+v", v)
	}
	if v.DistanceMeters < 300 || v.DistanceMeters > 370 {
		t.Errorf("distance = %.0f, want ~334", v.DistanceMeters)
	}
}

func TestEvaluate_CollisionCPA(t *testing.T) {
	positions := newMockPositions()
	e := NewRuleEngine(nil, positions, DefaultRuleConfig())
	_ = e.AddCollisionZone(collisionZone("vts"))

	// ~2.2 km apart on reciprocal courses at 10 kn: CPA ~0 in ~3.6 minutes.
	a := pos("aaa", 1000, 0, -0.01, 10, 90)
	b := pos("bbb", 1000, 0, 0.01, 10, 270)
	positions.put(a)
	e.Evaluate(a)
	positions.put(b)
	vs := e.Evaluate(b)
	if len(vs) != 1 {
		t.Fatalf("got %d violations, want 1 CPA alert", len(vs))
	}
	if vs[0].TCPASeconds <= 0 || vs[0].TCPASeconds > 600 {
		t.Errorf("tcpa = %.0f", vs[0].TCPASeconds)
	}

	// Same geometry but opening: no alert.
	positions2 := newMockPositions()
	e2 := NewRuleEngine(nil, positions2, DefaultRuleConfig())
	_ = e2.AddCollisionZone(collisionZone("vts"))
	c := pos("ccc", 1000, 0, -0.01, 10, 270)
	d := pos("ddd", 1000, 0, 0.01, 10, 90)
	positions2.put(c)
	e2.Evaluate(c)
	positions2.put(d)
	if vs := e2.Evaluate(d); len(vs) != 0 {
		t.Errorf("diverging vessels alerted: %v", vs[0].Message)
	}
}

func TestEvaluate_CollisionIgnoresStaleAndOutside(t *testing.T) {
	positions := newMockPositions()
	cfg := DefaultRuleConfig()
	cfg.StaleAfter = time.Minute
	e := NewRuleEngine(nil, positions, cfg)
	_ = e.AddCollisionZone(collisionZone("vts"))

	old := pos("old", 0, 0, 0, 0, 0)
	positions.put(old)
	e.Evaluate(old)

	now := pos("new", 600, 0.001, 0, 0, 0)
	positions.put(now)
	if vs := e.Evaluate(now); len(vs) != 0 {
		t.Errorf("stale vessel produced alert: %v", vs[0].Message)
	}

	// A vessel outside the collision zone is never compared.
	far := pos("far", 600, 1, 1, 0, 0)
	positions.put(far)
	if vs := e.Evaluate(far); len(vs) != 0 {
		t.Errorf("vessel outside zone alerted")
	}
}

func TestRuleEngine_ConcurrentEvaluateAndMutate(t *testing.T) {
	positions := newMockPositions()
	e := NewRuleEngine(nil, positions, DefaultRuleConfig())
	_ = e.AddCollisionZone(collisionZone("vts"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			owner := fmt.Sprintf("owner-%d", i%10)
			if err := e.AddZone(harborZone(owner, models.Constraint{Kind: models.ConstraintZoneEntry})); err != nil {
				_ = e.RemoveZone(owner)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			r := pos(fmt.Sprintf("v%d", i%7), int64(i), insideLat, 0, 3, 0)
			positions.put(r)
			_ = e.Evaluate(r)
		}
	}()
	wg.Wait()

	if e.Stats().Evaluations != 500 {
		t.Errorf("evaluations = %d, want 500", e.Stats().Evaluations)
	}
}
