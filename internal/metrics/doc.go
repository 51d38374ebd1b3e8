// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package metrics registers the Prometheus collectors for Shipwatch.
//
// Collectors are package-level promauto variables, exported at /metrics via
// promhttp. Components call the Record*/Update* helpers rather than touching
// collectors directly so label sets stay consistent.
//
// Families:
//   - replay_*: records published, skipped and the current speed factor
//   - transport_*: NATS publish/consume and circuit breaker state
//   - ingest_*: worker throughput, decode and persist failures
//   - position_cache_*: live vessel count
//   - rules_*: evaluation latency and violations by kind
//   - notifications_*: delivered and dropped private messages
//   - retention_*: sweep runs, rows deleted and failures
//   - api_*: HTTP latency and throughput
package metrics
