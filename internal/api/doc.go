// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package api implements the admin HTTP surface on the chi router.

Route groups:

	GET  /health                              liveness plus component status
	GET  /metrics                             Prometheus scrape endpoint
	GET  /ws                                  WebSocket upgrade for a subscriber

	/api/v1 (authenticated, rate limited)
	GET  /replay/speed                        current replay speed factor
	PUT  /replay/speed                        set factor, <= 0 is rejected
	GET|PUT|DELETE /zones/me                  caller's zone of interest
	GET|PUT|DELETE /collision-zones/me        caller's collision zone
	GET  /watchlist                           caller's watched vessels
	PUT|DELETE /watchlist/{mmsi}              watch or unwatch a vessel
	GET  /vessels                             latest position per vessel
	GET  /vessels/stats                       cache statistics
	GET  /vessels/nearby                      vessels around a point
	GET  /vessels/{mmsi}                      latest position of one vessel
	GET  /vessels/{mmsi}/track                stored track of one vessel
	GET  /history                             stored reports by filter
	GET  /ingest/stats                        pipeline counters
	GET  /perf                                per-route latency window

Zone mutations write the store first and then update the rule cache
synchronously, so the very next evaluated report sees the change.

Every JSON response uses the models.APIResponse envelope.
*/
package api
