// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package notify

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/websocket"
)

// Sender is the live delivery channel. Both methods must not block.
type Sender interface {
	Broadcast(messageType string, data interface{}) bool
	SendTo(subscriberID, messageType string, data interface{}) bool
}

// Forwarder receives a copy of every private notification.
type Forwarder interface {
	Enqueue(recipient string, n models.Notification) bool
}

// Stats are cumulative notifier counters.
type Stats struct {
	Broadcasts       int64 `json:"broadcasts"`
	BroadcastDropped int64 `json:"broadcast_dropped"`
	Private          int64 `json:"private"`
	PrivateDropped   int64 `json:"private_dropped"`
	Forwarded        int64 `json:"forwarded"`
}

// Notifier fans updates and violations out to subscribers.
type Notifier struct {
	sender    Sender
	watchers  *WatchList
	forwarder Forwarder
	logger    zerolog.Logger

	broadcasts       atomic.Int64
	broadcastDropped atomic.Int64
	private          atomic.Int64
	privateDropped   atomic.Int64
	forwarded        atomic.Int64
}

// NewNotifier creates a Notifier. watchers and forwarder may be nil.
func NewNotifier(sender Sender, watchers *WatchList, forwarder Forwarder) *Notifier {
	if watchers == nil {
		watchers = NewWatchList()
	}
	return &Notifier{
		sender:    sender,
		watchers:  watchers,
		forwarder: forwarder,
		logger:    logging.WithComponent("notifier"),
	}
}

// WatchList returns the list used for recipient resolution.
func (n *Notifier) WatchList() *WatchList {
	return n.watchers
}

// Broadcast publishes one public update.
func (n *Notifier) Broadcast(update models.VesselUpdate) {
	if n.sender.Broadcast(websocket.MessageTypeVesselUpdate, update) {
		n.broadcasts.Add(1)
		return
	}
	n.broadcastDropped.Add(1)
}

// Recipient is one resolved delivery target for a violation. Watched is
// set when the subscriber is reached through the watch list.
type Recipient struct {
	SubscriberID string
	Watched      bool
}

// Recipients resolves who must see v: the owner first, then, for
// zone-of-interest violations, the watchers of the vessel in ID order.
// Each subscriber appears once.
func (n *Notifier) Recipients(v models.Violation) []Recipient {
	out := []Recipient{{SubscriberID: v.OwnerID}}
	if v.Source != models.ZoneSourceInterest {
		return out
	}
	for _, sub := range n.watchers.Watchers(v.Vessel.MMSI) {
		if sub == v.OwnerID {
			continue
		}
		out = append(out, Recipient{SubscriberID: sub, Watched: true})
	}
	return out
}

// NotifyOwners sends one private message per recipient per violation, in
// violation order.
func (n *Notifier) NotifyOwners(violations []models.Violation) {
	for _, v := range violations {
		for _, r := range n.Recipients(v) {
			note := models.NotificationFor(v, r.Watched)
			if n.sender.SendTo(r.SubscriberID, websocket.MessageTypeViolation, note) {
				n.private.Add(1)
			} else {
				n.privateDropped.Add(1)
				n.logger.Debug().
					Str("subscriber_id", r.SubscriberID).
					Str("kind", string(v.Kind)).
					Str("mmsi", v.Vessel.MMSI).
					Msg("Violation not delivered, subscriber offline")
			}
			if n.forwarder != nil && n.forwarder.Enqueue(r.SubscriberID, note) {
				n.forwarded.Add(1)
			}
		}
	}
}

// Stats returns a snapshot of the counters.
func (n *Notifier) Stats() Stats {
	return Stats{
		Broadcasts:       n.broadcasts.Load(),
		BroadcastDropped: n.broadcastDropped.Load(),
		Private:          n.private.Load(),
		PrivateDropped:   n.privateDropped.Load(),
		Forwarded:        n.forwarded.Load(),
	}
}
