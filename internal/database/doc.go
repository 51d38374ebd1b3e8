// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package database is the DuckDB-backed durable store.

It holds the position history written behind the ingestion worker, the
per-owner zone and collision-zone definitions, subscriber watch lists and
the static vessel registry. At startup its contents rehydrate the
in-memory caches; afterwards the caches never wait on it for reads.

Tables:

  - positions: one row per (mmsi, ts); redelivered reports are ignored
  - vessels: static registry, mmsi -> ship_type
  - zones: zone of interest per owner, constraints as a JSON array
  - collision_zones: collision zone per owner
  - watchlist: (subscriber_id, mmsi) pairs
  - schema_migrations: applied versioned migrations

Retention:

DeleteBefore removes history rows with ts strictly below the cutoff.
MaxTimestamp reports the newest ingested report time, which the retention
sweeper uses as its clock instead of wall time.

Testing:

Tests open ":memory:" databases and are serialized through a semaphore
because concurrent DuckDB connections across tests are slow under CI.
*/
package database
