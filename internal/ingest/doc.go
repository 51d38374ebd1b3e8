// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package ingest is the sole consumer of the position transport.
//
// For every delivered report the Worker, in order:
//
//  1. decodes the payload; a bad payload is logged, counted and acked
//  2. persists the report to history; a failure is logged and processing
//     continues with the in-memory value
//  3. updates the position cache (last-write-wins by report timestamp)
//  4. evaluates the rule engine, only when the cache accepted the report
//  5. broadcasts the enriched update, then notifies violation recipients
//
// Handle never returns an error for a single record, so one bad message
// cannot stall the stream or reach the poison queue.
package ingest
