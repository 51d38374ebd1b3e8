// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package config provides centralized configuration management for Shipwatch.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, ./config.yaml or /etc/shipwatch/config.yaml), then
environment variables. Only mapped environment variables are read.

# Sections

  - server: HTTP listener (HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT)
  - logging: LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - replay: historical CSV source (REPLAY_PATH, REPLAY_SPEED, REPLAY_LOOP,
    REPLAY_RESUME, REPLAY_CHECKPOINT_DIR, REGISTRY_PATH)
  - transport: TRANSPORT_KIND (memory or nats), topic and router middleware
  - nats: embedded or external JetStream (NATS_URL, NATS_EMBEDDED, ...)
  - database: DuckDB history store (DUCKDB_PATH, DUCKDB_MAX_MEMORY)
  - retention: RETENTION_WINDOW (default 12h), RETENTION_INTERVAL
  - rules: proximity and CPA thresholds, cache sharding
  - notify: WebSocket hub queue and the optional violation webhook
  - security: AUTH_MODE (jwt or none), JWT_SECRET, rate limits, CORS

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	db, err := database.New(&cfg.Database)

Config is immutable after Load() and safe for concurrent reads.
*/
package config
