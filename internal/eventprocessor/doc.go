// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package eventprocessor is the position transport: a durable, ordered,
// at-least-once channel between the replay source and the ingestion worker.
//
// Two transports are available behind Watermill's message.Publisher and
// message.Subscriber interfaces:
//
//   - nats: NATS JetStream through watermill-nats, with an optional embedded
//     server. One stream (AIS) holds the ais.positions subject. The durable
//     consumer acks only after the handler returns, so an unacknowledged
//     report survives a consumer crash and is redelivered.
//   - memory: Watermill's gochannel pub/sub for tests and single-process demos.
//
// # Message format
//
// One message per report. The payload is the flat JSON encoding of
// models.PositionReport. The message UUID is a name-based UUID of
// "mmsi-timestamp", which lets JetStream's duplicate window and the router's
// deduplicator recognise redelivered or republished reports. The mmsi
// metadata key is advisory and carries no ordering guarantee across vessels.
//
// # Router
//
// The consumer side runs a Watermill router with, outer to inner:
//
//	PoisonQueue -> Deduplicator -> Retry -> Recoverer -> handler
//
// Handlers should not return errors for bad records; the ingestion worker
// logs and drops them so a single record never stalls the stream.
package eventprocessor
