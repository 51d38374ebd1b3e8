// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package models defines the data structures shared across Shipwatch.

Key types:

  - PositionReport: one AIS position message, immutable once built
  - VesselStaticInfo / ShipType: static registry classification
  - ZoneOfInterest / Constraint: per-owner region with ordered rules
  - CollisionZone: per-owner region monitored for close approaches
  - Violation / Notification: rule results and the private payload sent to subscribers
  - VesselUpdate: the public broadcast payload
*/
package models
