// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package middleware provides HTTP middleware shared by the admin API.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request counters and latency histograms keyed by
    the chi route pattern, so path parameters such as an MMSI do not
    explode label cardinality
  - PerformanceMonitor: sliding window of recent request latencies with
    per-route percentiles, served by the API for quick diagnostics

Typical stack inside a chi router:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)
*/
package middleware
