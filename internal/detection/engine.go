// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/tomtom215/shipwatch/internal/geo"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
	"github.com/tomtom215/shipwatch/internal/models"
)

// RuleEngine holds the zone and collision-zone caches and evaluates reports
// against them.
type RuleEngine struct {
	cfg        RuleConfig
	vessels    VesselTypeLookup
	positions  PositionLookup
	zones      *ruleSet[models.ZoneOfInterest]
	collisions *ruleSet[models.CollisionZone]
	state      *membership

	evaluations     atomic.Int64
	violations      atomic.Int64
	zoneViolations  atomic.Int64
	collisionAlerts atomic.Int64
}

var _ RuleCache = (*RuleEngine)(nil)

// NewRuleEngine creates an engine with empty caches.
func NewRuleEngine(vessels VesselTypeLookup, positions PositionLookup, cfg RuleConfig) *RuleEngine {
	defaults := DefaultRuleConfig()
	if cfg.ProximityMeters <= 0 {
		cfg.ProximityMeters = defaults.ProximityMeters
	}
	if cfg.CPAMeters <= 0 {
		cfg.CPAMeters = defaults.CPAMeters
	}
	if cfg.LookAhead <= 0 {
		cfg.LookAhead = defaults.LookAhead
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = defaults.StaleAfter
	}
	return &RuleEngine{
		cfg:        cfg,
		vessels:    vessels,
		positions:  positions,
		zones:      newRuleSet(func(z *models.ZoneOfInterest) string { return z.OwnerID }),
		collisions: newRuleSet(func(z *models.CollisionZone) string { return z.OwnerID }),
		state:      newMembership(),
	}
}

func zoneKey(ownerID string) string { return "zoi:" + ownerID }
func collisionKey(ownerID string) string { return "cz:" + ownerID }

// cloneZone copies the constraint slice so later caller edits cannot leak
// into a published snapshot.
func cloneZone(z models.ZoneOfInterest) models.ZoneOfInterest {
	z.Constraints = append([]models.Constraint(nil), z.Constraints...)
	return z
}

// AddZone registers a new zone of interest at the end of the evaluation order.
func (e *RuleEngine) AddZone(z models.ZoneOfInterest) error {
	if err := e.zones.add(cloneZone(z)); err != nil {
		return fmt.Errorf("add zone for %s: %w", z.OwnerID, err)
	}
	e.publishCounts()
	logging.Debug().Str("owner", z.OwnerID).Str("zone", z.Name).Msg("Zone of interest cached")
	return nil
}

// UpdateZone replaces the owner's zone, keeping its evaluation slot and
// current membership state.
func (e *RuleEngine) UpdateZone(z models.ZoneOfInterest) error {
	if err := e.zones.update(cloneZone(z)); err != nil {
		return fmt.Errorf("update zone for %s: %w", z.OwnerID, err)
	}
	logging.Debug().Str("owner", z.OwnerID).Str("zone", z.Name).Msg("Zone of interest updated")
	return nil
}

// RemoveZone drops the owner's zone and its membership state.
func (e *RuleEngine) RemoveZone(ownerID string) error {
	if err := e.zones.remove(ownerID); err != nil {
		return fmt.Errorf("remove zone for %s: %w", ownerID, err)
	}
	e.state.drop(zoneKey(ownerID))
	e.publishCounts()
	return nil
}

// AddCollisionZone registers a new collision zone.
func (e *RuleEngine) AddCollisionZone(z models.CollisionZone) error {
	if err := e.collisions.add(z); err != nil {
		return fmt.Errorf("add collision zone for %s: %w", z.OwnerID, err)
	}
	e.publishCounts()
	return nil
}

// UpdateCollisionZone replaces the owner's collision zone.
func (e *RuleEngine) UpdateCollisionZone(z models.CollisionZone) error {
	if err := e.collisions.update(z); err != nil {
		return fmt.Errorf("update collision zone for %s: %w", z.OwnerID, err)
	}
	return nil
}

// RemoveCollisionZone drops the owner's collision zone and its membership state.
func (e *RuleEngine) RemoveCollisionZone(ownerID string) error {
	if err := e.collisions.remove(ownerID); err != nil {
		return fmt.Errorf("remove collision zone for %s: %w", ownerID, err)
	}
	e.state.drop(collisionKey(ownerID))
	e.publishCounts()
	return nil
}

// LoadZones replaces the zone cache, keeping slice order as registration order.
func (e *RuleEngine) LoadZones(zs []models.ZoneOfInterest) int {
	cloned := make([]models.ZoneOfInterest, len(zs))
	for i := range zs {
		cloned[i] = cloneZone(zs[i])
	}
	n := e.zones.replace(cloned)
	e.publishCounts()
	return n
}

// LoadCollisionZones replaces the collision-zone cache.
func (e *RuleEngine) LoadCollisionZones(zs []models.CollisionZone) int {
	n := e.collisions.replace(zs)
	e.publishCounts()
	return n
}

// Zone returns the cached zone of interest for an owner.
func (e *RuleEngine) Zone(ownerID string) (models.ZoneOfInterest, bool) {
	z, ok := e.zones.get(ownerID)
	if !ok {
		return z, false
	}
	return cloneZone(z), true
}

// CollisionZone returns the cached collision zone for an owner.
func (e *RuleEngine) CollisionZone(ownerID string) (models.CollisionZone, bool) {
	return e.collisions.get(ownerID)
}

// Zones returns the zones of interest in registration order.
func (e *RuleEngine) Zones() []models.ZoneOfInterest {
	cur := e.zones.load()
	out := make([]models.ZoneOfInterest, len(cur))
	for i := range cur {
		out[i] = cloneZone(cur[i])
	}
	return out
}

// InsideZone reports whether the vessel is currently counted inside the owner's zone of interest.
func (e *RuleEngine) InsideZone(ownerID, mmsi string) bool {
	return e.state.isInside(zoneKey(ownerID), mmsi)
}

// Stats returns current counters.
func (e *RuleEngine) Stats() EngineStats {
	return EngineStats{
		Evaluations:     e.evaluations.Load(),
		Violations:      e.violations.Load(),
		ZoneViolations:  e.zoneViolations.Load(),
		CollisionAlerts: e.collisionAlerts.Load(),
		ZonesOfInterest: len(e.zones.load()),
		CollisionZones:  len(e.collisions.load()),
		Memberships:     e.state.size(),
	}
}

func (e *RuleEngine) publishCounts() {
	metrics.UpdateZoneCount(string(models.ZoneSourceInterest), len(e.zones.load()))
	metrics.UpdateZoneCount(string(models.ZoneSourceCollision), len(e.collisions.load()))
}

// Evaluate runs r against every cached zone and collision zone and returns
// the violations in deterministic order. The caller must have already
// applied r to the position cache.
func (e *RuleEngine) Evaluate(r models.PositionReport) []models.Violation {
	start := time.Now()
	defer func() { metrics.RecordRuleEvaluation(time.Since(start)) }()
	e.evaluations.Add(1)

	var out []models.Violation
	out = e.evaluateZones(r, out)
	out = e.evaluateCollisions(r, out)

	for i := range out {
		metrics.RecordViolation(string(out[i].Source), string(out[i].Kind))
	}
	e.violations.Add(int64(len(out)))
	return out
}

func (e *RuleEngine) shipType(mmsi string) models.ShipType {
	if e.vessels == nil {
		return models.ShipTypeUnknown
	}
	return e.vessels.ShipType(mmsi)
}

func (e *RuleEngine) evaluateZones(r models.PositionReport, out []models.Violation) []models.Violation {
	zones := e.zones.load()
	if len(zones) == 0 {
		return out
	}
	shipType := e.shipType(r.MMSI)

	for i := range zones {
		z := &zones[i]
		inside := geo.WithinRadius(z.CenterLat, z.CenterLon, z.RadiusMeters, r.Latitude, r.Longitude)
		was := e.state.transition(zoneKey(z.OwnerID), r.MMSI, inside)

		event := zoneStay
		switch {
		case inside && !was:
			event = zoneEntered
		case !inside && was:
			event = zoneExited
		}

		in := evalInput{report: r, shipType: shipType, inside: inside, event: event, zoneName: z.Name}
		for _, c := range z.Constraints {
			msg, ok := matchConstraint(c, in)
			if !ok {
				continue
			}
			out = append(out, models.Violation{
				Kind:      models.ViolationKind(c.Kind),
				Source:    models.ZoneSourceInterest,
				ZoneID:    z.ID,
				ZoneName:  z.Name,
				OwnerID:   z.OwnerID,
				Vessel:    models.RefFromReport(r),
				Message:   msg,
				Timestamp: r.Timestamp,
			})
			e.zoneViolations.Add(1)
		}
	}
	return out
}

func (e *RuleEngine) evaluateCollisions(r models.PositionReport, out []models.Violation) []models.Violation {
	zones := e.collisions.load()
	if len(zones) == 0 {
		return out
	}

	self := geo.Track{Lat: r.Latitude, Lon: r.Longitude, SOG: r.SOG, COG: r.COG}
	staleSeconds := e.cfg.StaleAfter.Seconds()
	lookAhead := e.cfg.LookAhead.Seconds()

	for i := range zones {
		z := &zones[i]
		key := collisionKey(z.OwnerID)
		inside := geo.WithinRadius(z.CenterLat, z.CenterLon, z.RadiusMeters, r.Latitude, r.Longitude)
		e.state.transition(key, r.MMSI, inside)
		if !inside {
			continue
		}

		for _, other := range e.state.members(key) {
			if other == r.MMSI || e.positions == nil {
				continue
			}
			o, ok := e.positions.Get(other)
			if !ok {
				continue
			}
			dt := float64(r.Timestamp - o.Timestamp)
			if math.Abs(dt) > staleSeconds {
				continue
			}

			// Bring the other vessel to the reporting vessel's timestamp.
			them := geo.Project(geo.Track{Lat: o.Latitude, Lon: o.Longitude, SOG: o.SOG, COG: o.COG}, dt)
			dist := geo.DistanceMeters(self.Lat, self.Lon, them.Lat, them.Lon)
			cpa, tcpa := geo.ClosestApproach(self, them)

			var msg string
			switch {
			case dist <= e.cfg.ProximityMeters:
				msg = fmt.Sprintf("Vessels %s and %s are %.0f m apart in %s", r.MMSI, other, dist, z.Name)
			case tcpa > 0 && tcpa <= lookAhead && cpa <= e.cfg.CPAMeters:
				msg = fmt.Sprintf("Vessels %s and %s will pass within %.0f m in %.1f min in %s",
					r.MMSI, other, cpa, tcpa/60, z.Name)
			default:
				continue
			}

			otherRef := models.RefFromReport(o)
			out = append(out, models.Violation{
				Kind:           models.ViolationCollision,
				Source:         models.ZoneSourceCollision,
				ZoneID:         z.ID,
				ZoneName:       z.Name,
				OwnerID:        z.OwnerID,
				Vessel:         models.RefFromReport(r),
				Other:          &otherRef,
				Message:        msg,
				Timestamp:      r.Timestamp,
				DistanceMeters: dist,
				CPAMeters:      cpa,
				TCPASeconds:    tcpa,
			})
			e.collisionAlerts.Add(1)
		}
	}
	return out
}
