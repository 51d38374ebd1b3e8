// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id := GenerateCorrelationID()
	if len(id) != 8 {
		t.Errorf("expected 8 character correlation id, got %q", id)
	}
	if id == GenerateCorrelationID() {
		t.Error("expected unique correlation ids")
	}
}

func TestContextValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if CorrelationIDFromContext(ctx) != "" || RequestIDFromContext(ctx) != "" || SubscriberIDFromContext(ctx) != "" {
		t.Fatal("expected empty values on background context")
	}

	ctx = ContextWithCorrelationID(ctx, "abc12345")
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithSubscriberID(ctx, "user-7")

	if got := CorrelationIDFromContext(ctx); got != "abc12345" {
		t.Errorf("correlation id = %q", got)
	}
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("request id = %q", got)
	}
	if got := SubscriberIDFromContext(ctx); got != "user-7" {
		t.Errorf("subscriber id = %q", got)
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(Config{Level: "info", Format: "json"})

	ctx := ContextWithSubscriberID(ContextWithNewCorrelationID(context.Background()), "owner-1")
	Ctx(ctx).Info().Msg("zone updated")

	out := buf.String()
	if !strings.Contains(out, `"subscriber_id":"owner-1"`) {
		t.Errorf("expected subscriber_id field, got: %s", out)
	}
	if !strings.Contains(out, `"correlation_id"`) {
		t.Errorf("expected correlation_id field, got: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer Init(Config{Level: "info", Format: "json"})

	l := WithComponent("replay")
	l.Info().Msg("started")
	if !strings.Contains(buf.String(), `"component":"replay"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}
