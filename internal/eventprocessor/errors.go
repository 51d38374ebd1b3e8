// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import "errors"

var (
	// ErrNilPublisher is returned when attempting to wrap a nil publisher.
	ErrNilPublisher = errors.New("publisher cannot be nil")

	// ErrPublisherClosed is returned by Publish after Close.
	ErrPublisherClosed = errors.New("publisher is closed")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidPayload is returned when a message does not decode to a valid report.
	ErrInvalidPayload = errors.New("invalid position payload")

	// ErrUnknownTransport is returned for an unsupported transport kind.
	ErrUnknownTransport = errors.New("unknown transport kind")
)
