// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package cache holds the in-memory structures on the ingestion hot path.

  - PositionCache: latest report per vessel, sharded by a murmur3 hash of
    the MMSI with one RWMutex per shard. Written only by the ingestion
    worker, read by snapshot, statistics and rule evaluation.
  - SpatialGrid: fixed-size lat/lon cells indexing the latest vessel
    positions for radius queries.
  - DedupCache: LRU with TTL used by the transport router to drop
    redelivered envelopes.

Last-write-wins: PositionCache replaces an entry only when the incoming
report has a strictly newer timestamp, so the final state does not depend
on delivery order.
*/
package cache
