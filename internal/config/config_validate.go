// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateReplay,
		c.validateTransport,
		c.validateNATS,
		c.validateDatabase,
		c.validateRetention,
		c.validateRules,
		c.validateNotify,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateReplay validates the replay source (only if enabled)
func (c *Config) validateReplay() error {
	if !c.Replay.Enabled {
		return nil
	}
	if c.Replay.Path == "" {
		return fmt.Errorf("REPLAY_PATH is required when REPLAY_ENABLED=true")
	}
	if c.Replay.SpeedFactor <= 0 {
		return fmt.Errorf("REPLAY_SPEED must be greater than 0")
	}
	if c.Replay.CheckpointEvery < 0 {
		return fmt.Errorf("REPLAY_CHECKPOINT_EVERY must be non-negative")
	}
	return nil
}

// Transport kinds
const (
	TransportNATS   = "nats"
	TransportMemory = "memory"
)

// validateTransport validates transport and router settings
func (c *Config) validateTransport() error {
	switch c.Transport.Kind {
	case TransportNATS, TransportMemory:
	default:
		return fmt.Errorf("TRANSPORT_KIND must be one of: nats, memory")
	}
	if c.Transport.Topic == "" {
		return fmt.Errorf("TRANSPORT_TOPIC is required")
	}
	if c.Transport.RouterRetryCount < 0 {
		return fmt.Errorf("ROUTER_RETRY_COUNT must be non-negative")
	}
	if c.Transport.RouterPoisonQueueEnabled && c.Transport.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("ROUTER_POISON_TOPIC is required when ROUTER_POISON_ENABLED=true")
	}
	if c.Transport.RouterPoisonQueueEnabled && c.Transport.RouterPoisonQueueTopic == c.Transport.Topic {
		return fmt.Errorf("ROUTER_POISON_TOPIC must differ from TRANSPORT_TOPIC")
	}
	return nil
}

// NATS limit constants
const (
	natsMinMemory = 64 * 1024 * 1024  // 64MB
	natsMinStore  = 100 * 1024 * 1024 // 100MB
)

// validateNATS validates NATS configuration (only if selected)
func (c *Config) validateNATS() error {
	if c.Transport.Kind != TransportNATS {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.MaxMemory < natsMinMemory {
			return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
		}
		if c.NATS.MaxStore < natsMinStore {
			return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
		}
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required")
	}
	if c.NATS.MaxDeliver < 1 {
		return fmt.Errorf("NATS_MAX_DELIVER must be at least 1")
	}
	return nil
}

// validateDatabase validates DuckDB settings
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

// validateRetention validates the history window
func (c *Config) validateRetention() error {
	if c.Retention.Window < time.Second {
		return fmt.Errorf("RETENTION_WINDOW must be at least 1s")
	}
	if c.Retention.Interval < time.Second {
		return fmt.Errorf("RETENTION_INTERVAL must be at least 1s")
	}
	return nil
}

// validateRules validates rule engine thresholds
func (c *Config) validateRules() error {
	r := c.Rules
	if r.ProximityMeters < 0 || r.CPAMeters < 0 {
		return fmt.Errorf("RULES_PROXIMITY_METERS and RULES_CPA_METERS must be non-negative")
	}
	if r.LookAhead <= 0 || r.StaleAfter <= 0 {
		return fmt.Errorf("RULES_LOOK_AHEAD and RULES_STALE_AFTER must be positive")
	}
	if r.CacheShards < 1 {
		return fmt.Errorf("CACHE_SHARDS must be at least 1")
	}
	if r.GridCellKm <= 0 {
		return fmt.Errorf("CACHE_GRID_CELL_KM must be positive")
	}
	return nil
}

// validateNotify validates notification delivery settings
func (c *Config) validateNotify() error {
	if c.Notify.HubQueueSize < 1 {
		return fmt.Errorf("HUB_QUEUE_SIZE must be at least 1")
	}
	if c.Notify.WebhookURL == "" {
		return nil
	}
	if err := validateHTTPURL(c.Notify.WebhookURL, "WEBHOOK_URL"); err != nil {
		return err
	}
	if c.Notify.WebhookRatePerSecond <= 0 || c.Notify.WebhookBurst < 1 {
		return fmt.Errorf("WEBHOOK_RATE_PER_SECOND and WEBHOOK_BURST must be positive")
	}
	return nil
}

// validAuthModes defines the allowed authentication modes
var validAuthModes = map[string]bool{
	"none": true,
	"jwt":  true,
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}
	// Refuse to start unauthenticated in production
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
	}
	if c.Security.AuthMode == "jwt" {
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
	}
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled")
	}
	return c.validateRateLimits()
}

// validateJWTSecret validates the JWT secret configuration
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// containsPlaceholder reports values copied verbatim from example configs.
func containsPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, p := range []string{"changeme", "change_me", "replace_with", "your_secret", "placeholder"} {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// hasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels lists accepted LOG_LEVEL values
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}
