// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/shipwatch/internal/cache"
	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
)

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for in-flight handlers on close.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages that still fail after retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string

	// Deduplication drops redelivered messages by UUID within the TTL.
	DeduplicationEnabled  bool
	DeduplicationTTL      time.Duration
	DeduplicationCapacity int
}

// DefaultRouterConfig returns defaults for the ingestion router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:          30 * time.Second,
		RetryMaxRetries:       3,
		RetryInitialInterval:  100 * time.Millisecond,
		RetryMaxInterval:      5 * time.Second,
		RetryMultiplier:       2.0,
		PoisonQueueTopic:      PoisonTopic,
		DeduplicationEnabled:  true,
		DeduplicationTTL:      5 * time.Minute,
		DeduplicationCapacity: 100000,
	}
}

// Deduplicator implements middleware.ExpiringKeyRepository on an LRU.
type Deduplicator struct {
	cache *cache.DedupCache
}

// NewDeduplicator creates a deduplicator holding up to capacity keys for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{cache: cache.NewDedupCache(capacity, ttl)}
}

// IsDuplicate records key and reports whether it was already present.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	dup := d.cache.IsDuplicate(key)
	if dup {
		metrics.RecordTransportDeduplicated()
	}
	return dup, nil
}

// Len returns the number of tracked keys.
func (d *Deduplicator) Len() int {
	return d.cache.Len()
}

// RouterStats holds runtime counters for the Router.
type RouterStats struct {
	Handlers     int   `json:"handlers"`
	Running      bool  `json:"running"`
	Deduplicated int64 `json:"deduplicated"`
	TrackedKeys  int   `json:"tracked_keys"`
}

// Router wraps the Watermill Router with the ingestion middleware stack.
// A Router runs once; after Run returns it cannot be restarted.
type Router struct {
	router    *message.Router
	config    RouterConfig
	logger    watermill.LoggerAdapter
	dedupRepo *Deduplicator
	handlers  atomic.Int32
	running   atomic.Bool
}

// NewRouter creates a Router. poisonPublisher may be nil to disable the
// poison queue.
func NewRouter(cfg *RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router: wmRouter,
		config: *cfg,
		logger: logger,
	}

	// Outer to inner: poison queue, deduplicator, retry, recoverer.
	// Retried attempts must not pass through the deduplicator again.
	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	if cfg.DeduplicationEnabled {
		capacity := cfg.DeduplicationCapacity
		if capacity <= 0 {
			capacity = 10000
		}
		r.dedupRepo = NewDeduplicator(capacity, cfg.DeduplicationTTL)
		dedup := middleware.Deduplicator{
			KeyFactory: func(msg *message.Message) (string, error) {
				return msg.UUID, nil
			},
			Repository: r.dedupRepo,
		}
		wmRouter.AddMiddleware(dedup.Middleware)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddMiddleware(middleware.Recoverer)

	return r, nil
}

// AddConsumerHandler registers a handler that produces no output messages.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	r.handlers.Add(1)
	return r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes once the router is processing.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Stats returns router counters.
func (r *Router) Stats() RouterStats {
	s := RouterStats{
		Handlers: int(r.handlers.Load()),
		Running:  r.running.Load(),
	}
	if r.dedupRepo != nil {
		hits, _, size := r.dedupRepo.cache.Stats()
		s.Deduplicated = hits
		s.TrackedKeys = size
	}
	return s
}

// Serve implements suture.Service.
func (r *Router) Serve(ctx context.Context) error {
	return r.Run(ctx)
}

// String names the service in supervisor logs.
func (r *Router) String() string {
	return "transport-router"
}
