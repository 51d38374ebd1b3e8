// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package websocket

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeVesselUpdate = "vessel_update"
	MessageTypeViolation    = "violation"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Drop reasons reported to metrics.
const (
	dropNotConnected = "not_connected"
	dropQueueFull    = "queue_full"
	dropSlowClient   = "slow_client"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// outbound is a queued message. An empty subscriberID addresses every client.
type outbound struct {
	subscriberID string
	msg          Message
}

// HubStats are cumulative hub counters.
type HubStats struct {
	Clients     int   `json:"clients"`
	Subscribers int   `json:"subscribers"`
	Broadcasts  int64 `json:"broadcasts"`
	Private     int64 `json:"private"`
	Dropped     int64 `json:"dropped"`
}

// Hub maintains the set of active clients, indexed by subscriber, and fans
// out public and private messages. Public and private messages share one
// queue so a client sees them in enqueue order.
type Hub struct {
	clients     map[*Client]bool
	subscribers map[string]map[*Client]bool
	queue       chan outbound
	Register    chan *Client
	Unregister  chan *Client
	mu          sync.RWMutex

	broadcasts atomic.Int64
	private    atomic.Int64
	dropped    atomic.Int64
}

// NewHub creates a new Hub. queueSize <= 0 uses 1024.
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Hub{
		queue:       make(chan outbound, queueSize),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		subscribers: make(map[string]map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err().
//
// Lifecycle events are drained before queued messages so that a message is
// never delivered against a stale client set.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case o := <-h.queue:
			h.deliver(o)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	set, ok := h.subscribers[client.subscriberID]
	if !ok {
		set = make(map[*Client]bool)
		h.subscribers[client.subscriberID] = set
	}
	set[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.UpdateWebSocketConnections(total)
	logging.Info().
		Str("subscriber_id", client.subscriberID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	removed := h.detachLocked(client)
	total := len(h.clients)
	h.mu.Unlock()

	if removed {
		metrics.UpdateWebSocketConnections(total)
		logging.Info().
			Str("subscriber_id", client.subscriberID).
			Int("total_clients", total).
			Msg("websocket client disconnected")
	}
}

// detachLocked removes client from both indexes and closes its send
// channel. Must be called with mu held.
func (h *Hub) detachLocked(client *Client) bool {
	if _, ok := h.clients[client]; !ok {
		return false
	}
	delete(h.clients, client)
	if set, ok := h.subscribers[client.subscriberID]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.subscribers, client.subscriberID)
		}
	}
	close(client.send)
	return true
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients returns the clients of set ordered by client ID.
func sortedClients(set map[*Client]bool) []*Client {
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// deliver hands a queued message to its recipients in client ID order.
// A client whose send buffer is full is disconnected.
func (h *Hub) deliver(o outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var targets []*Client
	channel := "broadcast"
	if o.subscriberID == "" {
		targets = sortedClients(h.clients)
	} else {
		channel = "private"
		targets = sortedClients(h.subscribers[o.subscriberID])
		if len(targets) == 0 {
			h.dropped.Add(1)
			metrics.RecordNotificationDropped(channel, dropNotConnected)
			logging.Debug().Str("subscriber_id", o.subscriberID).Msg("subscriber disconnected before delivery")
			return
		}
	}

	var toRemove []*Client
	for _, client := range targets {
		select {
		case client.send <- o.msg:
			metrics.RecordNotification(channel)
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		h.dropped.Add(1)
		metrics.RecordNotificationDropped(channel, dropSlowClient)
		logging.Warn().Str("subscriber_id", client.subscriberID).Msg("disconnecting slow websocket client")
		h.detachLocked(client)
	}
	if len(toRemove) > 0 {
		metrics.UpdateWebSocketConnections(len(h.clients))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range sortedClients(h.clients) {
		h.detachLocked(client)
	}
	metrics.UpdateWebSocketConnections(0)
}

func (h *Hub) enqueue(o outbound, channel string) bool {
	select {
	case h.queue <- o:
		return true
	default:
		h.dropped.Add(1)
		metrics.RecordNotificationDropped(channel, dropQueueFull)
		logging.Warn().Str("message_type", o.msg.Type).Msg("websocket queue full, dropping message")
		return false
	}
}

// Broadcast queues a message for every connected client. It never blocks;
// false means the queue was full and the message was dropped.
func (h *Hub) Broadcast(messageType string, data interface{}) bool {
	ok := h.enqueue(outbound{msg: Message{Type: messageType, Data: data}}, "broadcast")
	if ok {
		h.broadcasts.Add(1)
	}
	return ok
}

// SendTo queues a private message for every connection of subscriberID.
// It never blocks. A subscriber with no live connection is skipped and
// false is returned.
func (h *Hub) SendTo(subscriberID, messageType string, data interface{}) bool {
	if !h.IsConnected(subscriberID) {
		h.dropped.Add(1)
		metrics.RecordNotificationDropped("private", dropNotConnected)
		logging.Debug().Str("subscriber_id", subscriberID).Msg("private message dropped, subscriber not connected")
		return false
	}
	ok := h.enqueue(outbound{subscriberID: subscriberID, msg: Message{Type: messageType, Data: data}}, "private")
	if ok {
		h.private.Add(1)
	}
	return ok
}

// IsConnected reports whether subscriberID has at least one live connection.
func (h *Hub) IsConnected(subscriberID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[subscriberID]) > 0
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns a snapshot of hub counters.
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	clients, subs := len(h.clients), len(h.subscribers)
	h.mu.RUnlock()
	return HubStats{
		Clients:     clients,
		Subscribers: subs,
		Broadcasts:  h.broadcasts.Load(),
		Private:     h.private.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
