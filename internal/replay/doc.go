// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

// Package replay streams historical AIS position records onto the transport
// at a pace derived from their original timestamps.
//
// Between consecutive records the source waits
//
//	delay = max(0, t[i] - t[i-1]) * 1000 / speedFactor  milliseconds
//
// reading the speed factor fresh before every delay, so an admin change
// applies to the next record. Out-of-order timestamps are logged and
// treated as a zero gap. The wait is interruptible: cancellation is checked
// before and after each delay and a record whose delay was interrupted is
// never published.
//
// Malformed lines are logged, counted and skipped. Failure to open the
// source is the only fatal error.
//
// Progress can be checkpointed to BadgerDB so that a restart with resume
// enabled continues after the last published line instead of republishing
// the whole file.
package replay
