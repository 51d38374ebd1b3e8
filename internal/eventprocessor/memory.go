// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/shipwatch/internal/logging"
)

// NewMemoryPubSub returns the in-process transport. Publish blocks until
// every subscriber has acked, which keeps delivery in publish order.
// Messages published before a subscriber exists are dropped, so the
// consumer must be running before the replay source starts. Nothing
// survives a restart.
func NewMemoryPubSub(buffer int64, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if logger == nil {
		logger = logging.NewWatermillLogger()
	}
	if buffer <= 0 {
		buffer = 1024
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            buffer,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
}
