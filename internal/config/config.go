// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Replay    ReplayConfig    `koanf:"replay"`
	NATS      NATSConfig      `koanf:"nats"`
	Transport TransportConfig `koanf:"transport"`
	Database  DatabaseConfig  `koanf:"database"`
	Retention RetentionConfig `koanf:"retention"`
	Rules     RulesConfig     `koanf:"rules"`
	Notify    NotifyConfig    `koanf:"notify"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ReplayConfig drives the historical CSV replay source.
type ReplayConfig struct {
	// Enabled starts the replay source. With it off the server only serves
	// what is already in the store.
	Enabled bool `koanf:"enabled"`

	// Path of the historical position CSV.
	Path string `koanf:"path"`

	// RegistryPath is the optional static "mmsi,ship_type" CSV.
	RegistryPath string `koanf:"registry_path"`

	// SpeedFactor is the initial replay speed; 1 is real time.
	SpeedFactor float64 `koanf:"speed_factor"`

	Loop   bool `koanf:"loop"`
	Resume bool `koanf:"resume"`

	// CheckpointDir holds the badger checkpoint store. Empty keeps
	// checkpoints in memory only.
	CheckpointDir   string `koanf:"checkpoint_dir"`
	CheckpointEvery int    `koanf:"checkpoint_every"`
}

// NATSConfig holds NATS JetStream settings used when transport.kind is nats.
type NATSConfig struct {
	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server. If false, expects an
	// external server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the JetStream memory limit in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the JetStream file storage limit in bytes.
	MaxStore int64 `koanf:"max_store"`

	StreamName      string        `koanf:"stream_name"`
	StreamMaxAge    time.Duration `koanf:"stream_max_age"`
	DuplicateWindow time.Duration `koanf:"duplicate_window"`

	DurableName string        `koanf:"durable_name"`
	QueueGroup  string        `koanf:"queue_group"`
	AckWait     time.Duration `koanf:"ack_wait"`
	MaxDeliver  int           `koanf:"max_deliver"`
}

// TransportConfig selects the transport and tunes the ingestion router.
type TransportConfig struct {
	// Kind is nats or memory.
	Kind string `koanf:"kind"`

	// Topic carries position reports.
	Topic string `koanf:"topic"`

	// MemoryBuffer is the gochannel output buffer for the memory kind.
	MemoryBuffer int64 `koanf:"memory_buffer"`

	// Router defaults (Watermill Router middleware)
	RouterRetryCount           int           `koanf:"router_retry_count"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterDeduplicationEnabled bool          `koanf:"router_deduplication_enabled"`
	RouterDeduplicationTTL     time.Duration `koanf:"router_deduplication_ttl"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`

	// CircuitBreakerEnabled guards publishes with gobreaker.
	CircuitBreakerEnabled bool `koanf:"circuit_breaker_enabled"`

	// PersistTimeout bounds the history write of one report.
	PersistTimeout time.Duration `koanf:"persist_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"`                  // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // DuckDB default is true
	SkipIndexes            bool   `koanf:"skip_indexes"`             // fast test setup
}

// RetentionConfig bounds position history.
type RetentionConfig struct {
	// Window of history kept behind the newest stored report.
	Window time.Duration `koanf:"window"`

	// Interval between sweeps.
	Interval time.Duration `koanf:"interval"`
}

// RulesConfig tunes the rule engine and the position cache behind it.
type RulesConfig struct {
	ProximityMeters float64       `koanf:"proximity_meters"`
	CPAMeters       float64       `koanf:"cpa_meters"`
	LookAhead       time.Duration `koanf:"look_ahead"`
	StaleAfter      time.Duration `koanf:"stale_after"`

	CacheShards int     `koanf:"cache_shards"`
	GridCellKm  float64 `koanf:"grid_cell_km"`
}

// NotifyConfig configures subscriber delivery.
type NotifyConfig struct {
	// HubQueueSize bounds messages waiting for the WebSocket hub.
	HubQueueSize int `koanf:"hub_queue_size"`

	// WebhookURL forwards every private notification when set.
	WebhookURL           string        `koanf:"webhook_url"`
	WebhookAuthHeader    string        `koanf:"webhook_auth_header"`
	WebhookTimeout       time.Duration `koanf:"webhook_timeout"`
	WebhookRatePerSecond float64       `koanf:"webhook_rate_per_second"`
	WebhookBurst         int           `koanf:"webhook_burst"`
	WebhookQueueSize     int           `koanf:"webhook_queue_size"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	// AuthMode is jwt or none. With none the subscriber identity is taken
	// from the X-Subscriber-ID header, which is only safe in development.
	AuthMode  string `koanf:"auth_mode"`
	JWTSecret string `koanf:"jwt_secret"`
	JWTIssuer string `koanf:"jwt_issuer"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Load reads configuration from:
//  1. Built-in defaults
//  2. Config file (config.yaml if it exists, or CONFIG_PATH)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
