// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Replay
	ReplayRecordsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "replay_records_published_total",
			Help: "Total number of historical records published to the transport",
		},
	)

	ReplayRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "replay_records_skipped_total",
			Help: "Total number of historical records skipped",
		},
		[]string{"reason"}, // "parse", "publish", "checkpoint"
	)

	ReplaySpeedFactor = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "replay_speed_factor",
			Help: "Current replay speed multiplier",
		},
	)

	ReplayOutOfOrder = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "replay_out_of_order_total",
			Help: "Records whose timestamp was earlier than the previous record",
		},
	)

	// Transport
	TransportMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_messages_published_total",
			Help: "Total number of position messages published to NATS",
		},
	)

	TransportMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transport_messages_deduplicated_total",
			Help: "Redelivered messages dropped by the router deduplicator",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Ingestion
	IngestMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_messages_processed_total",
			Help: "Total number of position reports processed by the worker",
		},
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Per-record ingestion failures",
		},
		[]string{"stage"}, // "decode", "persist"
	)

	IngestProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_processing_duration_seconds",
			Help:    "Time to process one position report end to end",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	PositionCacheVessels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "position_cache_vessels",
			Help: "Number of vessels with a cached latest position",
		},
	)

	// Rules
	RuleEvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rules_evaluation_duration_seconds",
			Help:    "Time to evaluate one report against every zone",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
	)

	RuleViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rules_violations_total",
			Help: "Total number of rule violations",
		},
		[]string{"source", "kind"},
	)

	RuleZones = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rules_zones",
			Help: "Number of cached zones",
		},
		[]string{"source"},
	)

	// Notifications
	NotificationsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_delivered_total",
			Help: "Messages handed to connected subscribers",
		},
		[]string{"channel"}, // "broadcast", "private", "webhook"
	)

	NotificationsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Messages dropped because the subscriber was absent or slow",
		},
		[]string{"channel", "reason"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Currently connected WebSocket clients",
		},
	)

	// Retention
	RetentionRowsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_rows_deleted_total",
			Help: "Position history rows deleted by the sweeper",
		},
	)

	RetentionSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_sweeps_total",
			Help: "Retention sweep runs by outcome",
		},
		[]string{"result"}, // "success", "noop", "error"
	)

	RetentionCutoff = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_cutoff_timestamp",
			Help: "Epoch seconds of the last applied retention cutoff",
		},
	)

	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "API requests currently being served",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordReplayPublished records one record published by the replay source.
func RecordReplayPublished() {
	ReplayRecordsPublished.Inc()
}

// RecordReplaySkipped records a skipped record with its reason.
func RecordReplaySkipped(reason string) {
	ReplayRecordsSkipped.WithLabelValues(reason).Inc()
}

// SetReplaySpeed updates the speed factor gauge.
func SetReplaySpeed(factor float64) {
	ReplaySpeedFactor.Set(factor)
}

// RecordTransportPublish records a message published to NATS.
func RecordTransportPublish() {
	TransportMessagesPublished.Inc()
}

// RecordTransportDeduplicated records a redelivered message dropped by the router.
func RecordTransportDeduplicated() {
	TransportMessagesDeduplicated.Inc()
}

// RecordCircuitBreakerTransition records a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string, toValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(toValue)
}

// RecordIngest records one processed report and its duration.
func RecordIngest(duration time.Duration) {
	IngestMessagesProcessed.Inc()
	IngestProcessingDuration.Observe(duration.Seconds())
}

// RecordIngestError records a per-record failure at the given stage.
func RecordIngestError(stage string) {
	IngestErrors.WithLabelValues(stage).Inc()
}

// UpdatePositionCacheSize sets the cached vessel gauge.
func UpdatePositionCacheSize(n int) {
	PositionCacheVessels.Set(float64(n))
}

// RecordRuleEvaluation records evaluation latency.
func RecordRuleEvaluation(duration time.Duration) {
	RuleEvaluationDuration.Observe(duration.Seconds())
}

// RecordViolation records one violation.
func RecordViolation(source, kind string) {
	RuleViolations.WithLabelValues(source, kind).Inc()
}

// UpdateZoneCount sets the cached zone gauge for a rule source.
func UpdateZoneCount(source string, n int) {
	RuleZones.WithLabelValues(source).Set(float64(n))
}

// RecordNotification records a delivered message on a channel.
func RecordNotification(channel string) {
	NotificationsDelivered.WithLabelValues(channel).Inc()
}

// RecordNotificationDropped records a dropped message.
func RecordNotificationDropped(channel, reason string) {
	NotificationsDropped.WithLabelValues(channel, reason).Inc()
}

// RecordRetentionSweep records the outcome of a retention run.
func RecordRetentionSweep(deleted int64, cutoff int64, err error) {
	switch {
	case err != nil:
		RetentionSweeps.WithLabelValues("error").Inc()
	case cutoff == 0:
		RetentionSweeps.WithLabelValues("noop").Inc()
	default:
		RetentionSweeps.WithLabelValues("success").Inc()
		RetentionRowsDeleted.Add(float64(deleted))
		RetentionCutoff.Set(float64(cutoff))
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight request gauge up or down.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// UpdateWebSocketConnections sets the connected client gauge.
func UpdateWebSocketConnections(n int) {
	WebSocketConnections.Set(float64(n))
}
