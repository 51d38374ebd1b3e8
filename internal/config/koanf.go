// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shipwatch/config.yaml",
	"/etc/shipwatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Replay: ReplayConfig{
			Enabled:         true,
			Path:            "/data/ais.csv",
			RegistryPath:    "",
			SpeedFactor:     1.0,
			Loop:            false,
			Resume:          false,
			CheckpointDir:   "",
			CheckpointEvery: 1000,
		},
		NATS: NATSConfig{
			URL:             "nats://127.0.0.1:4222",
			EmbeddedServer:  true,
			StoreDir:        "/data/nats/jetstream",
			MaxMemory:       256 << 20, // 256MB
			MaxStore:        4 << 30,   // 4GB
			StreamName:      "AIS",
			StreamMaxAge:    24 * time.Hour,
			DuplicateWindow: 2 * time.Minute,
			DurableName:     "ingest",
			QueueGroup:      "ingest",
			AckWait:         30 * time.Second,
			MaxDeliver:      5,
		},
		Transport: TransportConfig{
			Kind:                       TransportNATS,
			Topic:                      "ais.positions",
			MemoryBuffer:               1024,
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 100 * time.Millisecond,
			RouterDeduplicationEnabled: true,
			RouterDeduplicationTTL:     5 * time.Minute,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "ais.poison",
			RouterCloseTimeout:         30 * time.Second,
			CircuitBreakerEnabled:      true,
			PersistTimeout:             5 * time.Second,
		},
		Database: DatabaseConfig{
			Path:                   "/data/shipwatch.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
		},
		Retention: RetentionConfig{
			Window:   12 * time.Hour,
			Interval: time.Minute,
		},
		Rules: RulesConfig{
			ProximityMeters: 500,
			CPAMeters:       200,
			LookAhead:       10 * time.Minute,
			StaleAfter:      10 * time.Minute,
			CacheShards:     32,
			GridCellKm:      5,
		},
		Notify: NotifyConfig{
			HubQueueSize:         1024,
			WebhookTimeout:       10 * time.Second,
			WebhookRatePerSecond: 5,
			WebhookBurst:         10,
			WebhookQueueSize:     1000,
		},
		Security: SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         "",
			JWTIssuer:         "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first default
// path found, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML already yields slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak
// into the config.
var envMappings = map[string]string{
	// Server mappings
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Replay mappings
	"replay_enabled":          "replay.enabled",
	"replay_path":             "replay.path",
	"registry_path":           "replay.registry_path",
	"replay_speed":            "replay.speed_factor",
	"replay_loop":             "replay.loop",
	"replay_resume":           "replay.resume",
	"replay_checkpoint_dir":   "replay.checkpoint_dir",
	"replay_checkpoint_every": "replay.checkpoint_every",

	// NATS mappings
	"nats_url":              "nats.url",
	"nats_embedded":         "nats.embedded_server",
	"nats_store_dir":        "nats.store_dir",
	"nats_max_memory":       "nats.max_memory",
	"nats_max_store":        "nats.max_store",
	"nats_stream_name":      "nats.stream_name",
	"nats_stream_max_age":   "nats.stream_max_age",
	"nats_duplicate_window": "nats.duplicate_window",
	"nats_durable_name":     "nats.durable_name",
	"nats_queue_group":      "nats.queue_group",
	"nats_ack_wait":         "nats.ack_wait",
	"nats_max_deliver":      "nats.max_deliver",

	// Transport and router mappings
	"transport_kind":          "transport.kind",
	"transport_topic":         "transport.topic",
	"transport_memory_buffer": "transport.memory_buffer",
	"router_retry_count":      "transport.router_retry_count",
	"router_retry_interval":   "transport.router_retry_initial_interval",
	"router_dedup_enabled":    "transport.router_deduplication_enabled",
	"router_dedup_ttl":        "transport.router_deduplication_ttl",
	"router_poison_enabled":   "transport.router_poison_queue_enabled",
	"router_poison_topic":     "transport.router_poison_queue_topic",
	"router_close_timeout":    "transport.router_close_timeout",
	"circuit_breaker_enabled": "transport.circuit_breaker_enabled",
	"ingest_persist_timeout":  "transport.persist_timeout",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Retention mappings
	"retention_window":   "retention.window",
	"retention_interval": "retention.interval",

	// Rule engine mappings
	"rules_proximity_meters": "rules.proximity_meters",
	"rules_cpa_meters":       "rules.cpa_meters",
	"rules_look_ahead":       "rules.look_ahead",
	"rules_stale_after":      "rules.stale_after",
	"cache_shards":           "rules.cache_shards",
	"cache_grid_cell_km":     "rules.grid_cell_km",

	// Notification mappings
	"hub_queue_size":          "notify.hub_queue_size",
	"webhook_url":             "notify.webhook_url",
	"webhook_auth_header":     "notify.webhook_auth_header",
	"webhook_timeout":         "notify.webhook_timeout",
	"webhook_rate_per_second": "notify.webhook_rate_per_second",
	"webhook_burst":           "notify.webhook_burst",
	"webhook_queue_size":      "notify.webhook_queue_size",

	// Security mappings
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
// Examples:
//   - REPLAY_SPEED -> replay.speed_factor
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
