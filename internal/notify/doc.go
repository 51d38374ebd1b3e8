// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package notify turns ingestion results into subscriber messages.
//
// Broadcast sends one public vessel_update per ingested report.
// NotifyOwners resolves the recipients of every violation and sends one
// private violation message to each of them:
//
//   - the owner of the zone or collision zone that fired
//   - for zone-of-interest violations only, every subscriber whose
//     WatchList contains the implicated vessel
//
// Delivery is best effort. Nothing here blocks the ingestion worker or
// returns an error to it: a disconnected subscriber is skipped, a full
// queue drops the message, and the optional WebhookForwarder runs on its
// own goroutine behind a bounded queue and a rate limiter.
package notify
