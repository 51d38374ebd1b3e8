// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package websocket delivers live vessel updates and private violation
notifications to connected subscribers.

It uses gorilla/websocket with a hub-client architecture. Every client is
bound to the subscriber identity taken from its bearer token, and the hub
indexes clients by that identity so a private message reaches every open
connection of one subscriber and nobody else.

Message Types:

  - vessel_update: public, sent to every client for every ingested report
  - violation: private, sent only to the recipients of a rule violation
  - ping / pong: application-level keepalive

Wire format:

	{"type":"vessel_update","data":{"mmsi":"219000001","lat":55.6,...}}
	{"type":"violation","data":{"kind":"speed_above","zone_name":"harbour",...}}

Delivery:

Broadcast and SendTo never block the caller. Both enqueue on a single
bounded queue drained by the hub goroutine, so one subscriber observes
public and private messages in enqueue order. When the queue is full the
message is dropped and counted. A client whose own send buffer is full is
disconnected. A private message for a subscriber with no live connection
is dropped with a debug log.

Connection Lifecycle:

 1. the API layer verifies the token and upgrades the connection
 2. NewClient binds the connection to the subscriber; the hub registers it
 3. Start launches the read and write pumps
 4. on close or error the client unregisters and the hub closes its buffer

Timeouts:

  - writeWait: 10 seconds per write
  - pongWait: 60 seconds without a pong closes the connection
  - pingPeriod: 54 seconds
*/
package websocket
