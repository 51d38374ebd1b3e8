// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package main is the entry point for the Shipwatch server.

Shipwatch replays historical AIS position reports through a message
transport, keeps the latest position of every vessel in memory, evaluates
zone and collision rules on each report and notifies subscribers over
WebSocket (and optionally a webhook).

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("shipwatch")
	├── DataSupervisor ("data-layer")
	│   └── Retention sweeper (12h window behind the newest report)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (transport.kind=nats, nats.embedded_server)
	│   ├── WebSocket hub
	│   ├── Transport router (ingestion worker)
	│   ├── Webhook forwarder (optional)
	│   └── Replay source (starts once the router is running)
	└── APISupervisor ("api-layer")
	    └── HTTP server (admin API, /ws, /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB position history, zones and watch lists
 4. Rehydration: position cache, rule registry and watch lists from the store
 5. Static registry: optional mmsi,ship_type CSV
 6. Notification: WebSocket hub, webhook forwarder, notifier
 7. Transport: in-memory gochannel or NATS JetStream, Watermill router
 8. Replay source: CSV reader with speed control and badger checkpoints
 9. HTTP server: Chi router with middleware stack

# Configuration

Core environment variables:

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	REPLAY_PATH=/data/ais.csv
	REPLAY_SPEED=1                # speed factor, 1 is real time
	TRANSPORT_KIND=nats          # nats or memory
	NATS_EMBEDDED=true
	DUCKDB_PATH=/data/shipwatch.duckdb
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the router waits for in-flight messages, the replay source saves
its checkpoint and the database is closed last.
*/
package main
