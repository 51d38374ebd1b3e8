// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

/*
Package auth establishes the subscriber identity behind each HTTP request
and WebSocket connection.

Identity is an HS256 JWT whose "sub" claim is the subscriber ID. The token is
read from, in order:

  - Authorization: Bearer <token>
  - the "token" query parameter (browsers cannot set headers on a WebSocket
    upgrade)
  - the "token" cookie

With AUTH_MODE=none the subscriber ID is taken verbatim from the
X-Subscriber-ID header or the "sub" query parameter. That mode is refused in
production by config validation.

The verified ID is attached to the request context with
logging.ContextWithSubscriberID, so logging.Ctx(ctx) carries it, and is read
back with SubscriberID.
*/
package auth
