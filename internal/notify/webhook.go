// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
	"github.com/tomtom215/shipwatch/internal/models"
)

// ErrInvalidWebhookURL is returned for a URL that is not absolute http(s).
var ErrInvalidWebhookURL = errors.New("invalid webhook URL")

// WebhookConfig configures violation forwarding.
type WebhookConfig struct {
	URL           string
	AuthHeader    string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	QueueSize     int
}

// DefaultWebhookConfig returns conservative forwarding limits for url.
func DefaultWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:           url,
		Timeout:       10 * time.Second,
		RatePerSecond: 5,
		Burst:         10,
		QueueSize:     1000,
	}
}

// ValidateWebhookURL checks that rawURL is an absolute http or https URL.
func ValidateWebhookURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty", ErrInvalidWebhookURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWebhookURL, err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidWebhookURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidWebhookURL)
	}
	return nil
}

// WebhookPayload is the JSON body posted for one delivered notification.
type WebhookPayload struct {
	Event        string              `json:"event"`
	SentAt       time.Time           `json:"sent_at"`
	Recipient    string              `json:"recipient"`
	Notification models.Notification `json:"notification"`
}

type webhookItem struct {
	recipient string
	note      models.Notification
}

// WebhookForwarder posts notifications to an HTTP endpoint from its own
// goroutine. Enqueue never blocks; Serve drains the queue at the
// configured rate.
type WebhookForwarder struct {
	cfg     WebhookConfig
	client  *http.Client
	limiter *rate.Limiter
	queue   chan webhookItem
	logger  zerolog.Logger

	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewWebhookForwarder validates cfg and creates a forwarder.
func NewWebhookForwarder(cfg WebhookConfig) (*WebhookForwarder, error) {
	if err := ValidateWebhookURL(cfg.URL); err != nil {
		return nil, err
	}
	defaults := DefaultWebhookConfig(cfg.URL)
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaults.RatePerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	return &WebhookForwarder{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		queue:   make(chan webhookItem, cfg.QueueSize),
		logger:  logging.WithComponent("webhook"),
	}, nil
}

// Enqueue schedules n for delivery. It reports false when the queue is full.
func (f *WebhookForwarder) Enqueue(recipient string, n models.Notification) bool {
	select {
	case f.queue <- webhookItem{recipient: recipient, note: n}:
		return true
	default:
		f.dropped.Add(1)
		metrics.RecordNotificationDropped("webhook", "queue_full")
		return false
	}
}

// Serve implements suture.Service. Pending items are abandoned on shutdown.
func (f *WebhookForwarder) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case item := <-f.queue:
			if err := f.limiter.Wait(ctx); err != nil {
				return nil
			}
			if err := f.post(ctx, item); err != nil {
				f.failed.Add(1)
				metrics.RecordNotificationDropped("webhook", "delivery_failed")
				f.logger.Warn().Err(err).Str("recipient", item.recipient).Msg("Webhook delivery failed")
				continue
			}
			f.sent.Add(1)
			metrics.RecordNotification("webhook")
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (f *WebhookForwarder) String() string {
	return "webhook-forwarder"
}

func (f *WebhookForwarder) post(ctx context.Context, item webhookItem) error {
	body, err := json.Marshal(WebhookPayload{
		Event:        "violation",
		SentAt:       time.Now().UTC(),
		Recipient:    item.recipient,
		Notification: item.note,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Shipwatch-Webhook/1.0")
	if f.cfg.AuthHeader != "" {
		req.Header.Set("Authorization", f.cfg.AuthHeader)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

// WebhookStats are cumulative forwarder counters.
type WebhookStats struct {
	Sent    int64 `json:"sent"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
	Pending int   `json:"pending"`
}

// Stats returns a snapshot of the counters.
func (f *WebhookForwarder) Stats() WebhookStats {
	return WebhookStats{
		Sent:    f.sent.Load(),
		Failed:  f.failed.Load(),
		Dropped: f.dropped.Load(),
		Pending: len(f.queue),
	}
}
