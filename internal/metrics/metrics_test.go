// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramOf(t *testing.T, h prometheus.Histogram) *dto.Histogram {
	t.Helper()
	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetHistogram()
}

func TestRecordRetentionSweep(t *testing.T) {
	success := RetentionSweeps.WithLabelValues("success")
	noop := RetentionSweeps.WithLabelValues("noop")
	failed := RetentionSweeps.WithLabelValues("error")

	beforeSuccess := testutil.ToFloat64(success)
	beforeNoop := testutil.ToFloat64(noop)
	beforeErr := testutil.ToFloat64(failed)
	beforeDeleted := testutil.ToFloat64(RetentionRowsDeleted)

	RecordRetentionSweep(42, 1700000000, nil)
	RecordRetentionSweep(0, 0, nil)
	RecordRetentionSweep(0, 0, errors.New("db locked"))

	if got := testutil.ToFloat64(success) - beforeSuccess; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(noop) - beforeNoop; got != 1 {
		t.Errorf("noop delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(failed) - beforeErr; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RetentionRowsDeleted) - beforeDeleted; got != 42 {
		t.Errorf("deleted delta = %v, want 42", got)
	}
	if got := testutil.ToFloat64(RetentionCutoff); got != 1700000000 {
		t.Errorf("cutoff gauge = %v", got)
	}
}

func TestRecordViolation(t *testing.T) {
	c := RuleViolations.WithLabelValues("zone_of_interest", "speed_above")
	before := testutil.ToFloat64(c)

	RecordViolation("zone_of_interest", "speed_above")
	RecordViolation("zone_of_interest", "speed_above")

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("violations delta = %v, want 2", got)
	}
}

func TestGaugesAndHistograms(t *testing.T) {
	SetReplaySpeed(4.5)
	if got := testutil.ToFloat64(ReplaySpeedFactor); got != 4.5 {
		t.Errorf("speed gauge = %v, want 4.5", got)
	}

	UpdatePositionCacheSize(12)
	if got := testutil.ToFloat64(PositionCacheVessels); got != 12 {
		t.Errorf("cache gauge = %v, want 12", got)
	}

	RecordIngest(3 * time.Millisecond)
	RecordRuleEvaluation(50 * time.Microsecond)
	RecordAPIRequest("GET", "/api/v1/vessels", "200", 2*time.Millisecond)

	if n := testutil.CollectAndCount(IngestProcessingDuration); n != 1 {
		t.Errorf("ingest histogram series = %d, want 1", n)
	}
	if n := testutil.CollectAndCount(APIRequestDuration); n < 1 {
		t.Errorf("api histogram series = %d, want >= 1", n)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("nats-publisher", "closed", "open", 2)

	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("nats-publisher")); got != 2 {
		t.Errorf("breaker state = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("nats-publisher", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v, want >= 1", got)
	}
}

func TestRecordRuleEvaluation_Observes(t *testing.T) {
	before := histogramOf(t, RuleEvaluationDuration)

	RecordRuleEvaluation(2 * time.Millisecond)
	RecordRuleEvaluation(4 * time.Millisecond)

	after := histogramOf(t, RuleEvaluationDuration)
	if got := after.GetSampleCount() - before.GetSampleCount(); got != 2 {
		t.Errorf("sample count delta = %d, want 2", got)
	}
	sum := after.GetSampleSum() - before.GetSampleSum()
	if sum < 0.0059 || sum > 0.0061 {
		t.Errorf("sample sum delta = %v, want ~0.006s", sum)
	}
}
