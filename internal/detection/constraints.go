// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package detection

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/shipwatch/internal/models"
)

// zoneEvent is the membership edge seen for this report.
type zoneEvent int

const (
	zoneStay zoneEvent = iota
	zoneEntered
	zoneExited
)

// evalInput is everything a constraint may look at.
type evalInput struct {
	report   models.PositionReport
	shipType models.ShipType
	inside   bool
	event    zoneEvent
	zoneName string
}

// matchConstraint evaluates one constraint. It returns the violation message
// and true on a match. Unparsable values never match.
func matchConstraint(c models.Constraint, in evalInput) (string, bool) {
	r := in.report
	switch c.Kind {
	case models.ConstraintZoneEntry:
		if in.event == zoneEntered {
			return fmt.Sprintf("Vessel %s entered %s", r.MMSI, in.zoneName), true
		}

	case models.ConstraintZoneExit:
		if in.event == zoneExited {
			return fmt.Sprintf("Vessel %s left %s", r.MMSI, in.zoneName), true
		}

	case models.ConstraintSpeedAbove:
		limit, ok := parseKnots(c.Value)
		if ok && in.inside && r.SOG > limit {
			return fmt.Sprintf("Vessel %s at %.1f kn exceeds %.1f kn in %s", r.MMSI, r.SOG, limit, in.zoneName), true
		}

	case models.ConstraintSpeedBelow:
		limit, ok := parseKnots(c.Value)
		if ok && in.inside && r.SOG < limit {
			return fmt.Sprintf("Vessel %s at %.1f kn is below %.1f kn in %s", r.MMSI, r.SOG, limit, in.zoneName), true
		}

	case models.ConstraintForbiddenVesselType:
		forbidden, err := models.ParseShipType(c.Value)
		if err == nil && in.inside && in.shipType == forbidden {
			return fmt.Sprintf("Forbidden %s vessel %s in %s", forbidden, r.MMSI, in.zoneName), true
		}

	case models.ConstraintUnwantedNavStatus:
		status, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err == nil && in.inside && r.NavStatus == status {
			return fmt.Sprintf("Vessel %s is %s in %s", r.MMSI, models.NavStatusName(status), in.zoneName), true
		}
	}
	return "", false
}

func parseKnots(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// ValidateConstraint checks a constraint value ahead of storage. Evaluation
// still treats bad values as non-matches; this only gives the API layer a
// way to reject them early.
func ValidateConstraint(c models.Constraint) error {
	if !c.Kind.Valid() {
		return fmt.Errorf("unknown constraint kind %q", c.Kind)
	}
	switch c.Kind {
	case models.ConstraintSpeedAbove, models.ConstraintSpeedBelow:
		if _, ok := parseKnots(c.Value); !ok {
			return fmt.Errorf("%s: %q is not a non-negative speed in knots", c.Kind, c.Value)
		}
	case models.ConstraintForbiddenVesselType:
		if _, err := models.ParseShipType(c.Value); err != nil {
			return fmt.Errorf("%s: %w", c.Kind, err)
		}
	case models.ConstraintUnwantedNavStatus:
		n, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || n < 0 || n > 15 {
			return fmt.Errorf("%s: %q is not a navigational status code 0-15", c.Kind, c.Value)
		}
	}
	return nil
}
