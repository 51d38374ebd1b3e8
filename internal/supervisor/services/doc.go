// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package services adapts components whose lifecycle does not match
// suture.Service: the HTTP server, the embedded NATS server and run-once
// loops such as the transport router and the replay source.
//
// Components that already loop until canceled (websocket.Hub,
// retention.Sweeper, notify.WebhookForwarder) implement suture.Service
// themselves and are added to the tree directly.
package services
