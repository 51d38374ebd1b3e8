// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func TestNewPerformanceMonitor(t *testing.T) {
	tests := []struct {
		name       string
		maxMetrics int
		want       int
	}{
		{"explicit capacity", 10, 10},
		{"zero uses default", 0, 1000},
		{"negative uses default", -5, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := NewPerformanceMonitor(tt.maxMetrics)
			if pm.maxMetrics != tt.want {
				t.Errorf("Expected maxMetrics %d, got %d", tt.want, pm.maxMetrics)
			}
		})
	}
}

func TestPerformanceMonitor_SlidingWindow(t *testing.T) {
	pm := NewPerformanceMonitor(3)
	for i := 0; i < 5; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/r", Method: "GET", DurationMS: int64(i), Timestamp: time.Now()})
	}

	if pm.Len() != 3 {
		t.Fatalf("Expected window of 3, got %d", pm.Len())
	}
	stats := pm.GetStats()
	if len(stats) != 1 {
		t.Fatalf("Expected one endpoint, got %d", len(stats))
	}
	if stats[0].MinDuration != 2 || stats[0].MaxDuration != 4 {
		t.Errorf("Expected oldest samples evicted, got min=%d max=%d", stats[0].MinDuration, stats[0].MaxDuration)
	}
}

func TestPerformanceMonitor_GetStats(t *testing.T) {
	pm := NewPerformanceMonitor(100)
	for i := 1; i <= 10; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/a", Method: "GET", DurationMS: int64(i * 10), StatusCode: 200})
	}
	pm.RecordRequest(&RequestMetrics{Route: "/b", Method: "PUT", DurationMS: 5, StatusCode: 500})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("Expected 2 endpoints, got %d", len(stats))
	}

	a := stats[0]
	if a.Endpoint != "GET /a" || a.RequestCount != 10 {
		t.Fatalf("Expected busiest endpoint first, got %+v", a)
	}
	if a.AvgDuration != 55 {
		t.Errorf("Expected avg 55, got %v", a.AvgDuration)
	}
	if a.P50Duration != 50 || a.P95Duration != 90 || a.P99Duration != 90 {
		t.Errorf("Unexpected percentiles p50=%d p95=%d p99=%d", a.P50Duration, a.P95Duration, a.P99Duration)
	}

	if b := stats[1]; b.ErrorCount != 1 {
		t.Errorf("Expected 1 server error for PUT /b, got %d", b.ErrorCount)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	pm := NewPerformanceMonitor(10)
	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/zones/{owner}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/zones/alice", nil))

	stats := pm.GetStats()
	if len(stats) != 1 || stats[0].Endpoint != "GET /zones/{owner}" {
		t.Fatalf("Expected one sample keyed by route pattern, got %+v", stats)
	}
}

func TestPercentile(t *testing.T) {
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("Expected 0 for empty slice, got %d", got)
	}
	if got := percentile([]int64{7}, 0.99); got != 7 {
		t.Errorf("Expected 7, got %d", got)
	}
}
