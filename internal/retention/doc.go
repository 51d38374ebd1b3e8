// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package retention bounds position history to a sliding window anchored at
the newest stored report.

The window is measured in data time, not wall-clock time: during a replay of
old records the history keeps the most recent Window of the replayed data.
Each sweep computes

	cutoff = MaxTimestamp() - Window

and deletes every report with timestamp strictly below cutoff. A report
exactly at the cutoff is kept. An empty history makes the sweep a no-op.

Sweeps run on a ticker from Serve, which is a suture service. Errors are
logged and counted; the next tick retries. Sweeping never touches the
in-memory caches, so it cannot block ingestion beyond DuckDB's own write
concurrency.
*/
package retention
