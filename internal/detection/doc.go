// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package detection evaluates position reports against user-defined rules.
//
// Architecture:
//
//	PositionReport -> RuleEngine.Evaluate -> []Violation -> Notifier
//	                    |            |
//	                    v            v
//	           zones of interest   collision zones
//	           (constraints)       (distance / CPA)
//
// Two rule sets are cached, each keyed by owner id: zones of interest and
// collision zones. Both are copy-on-write snapshots so evaluation never
// takes a lock on the read path. The API layer keeps them in step with the
// store through the RuleCache methods after each successful mutation; the
// engine never polls the store.
//
// Zone entry and exit are edge-triggered against per (zone, vessel)
// membership state, which lives only in memory and starts empty after a
// restart. Speed, vessel type and navigational status constraints are
// level-triggered and fire on every qualifying report while the vessel is
// inside the zone.
//
// Violations come out in zone registration order, then constraint
// declaration order, followed by collision violations in collision-zone
// registration order and then by the other vessel's MMSI.
package detection
