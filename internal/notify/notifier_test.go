// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package notify

import (
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/tomtom215/shipwatch/internal/logging"
	"github.com/tomtom215/shipwatch/internal/models"
	"github.com/tomtom215/shipwatch/internal/websocket"
)

func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

type sent struct {
	to   string
	kind string
	data interface{}
}

// mockSender records deliveries; subscribers in offline are not connected.
type mockSender struct {
	mu            sync.Mutex
	sent          []sent
	offline       map[string]bool
	dropBroadcast bool
}

func (m *mockSender) Broadcast(messageType string, data interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dropBroadcast {
		return false
	}
	m.sent = append(m.sent, sent{kind: messageType, data: data})
	return true
}

func (m *mockSender) SendTo(subscriberID, messageType string, data interface{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offline[subscriberID] {
		return false
	}
	m.sent = append(m.sent, sent{to: subscriberID, kind: messageType, data: data})
	return true
}

type mockForwarder struct {
	items []string
}

func (m *mockForwarder) Enqueue(recipient string, _ models.Notification) bool {
	m.items = append(m.items, recipient)
	return true
}

func zoneViolation(owner, mmsi string) models.Violation {
	return models.Violation{
		Kind:      models.ViolationKind(models.ConstraintSpeedAbove),
		Source:    models.ZoneSourceInterest,
		ZoneID:    "z-" + owner,
		ZoneName:  owner + "'s zone",
		OwnerID:   owner,
		Vessel:    models.VesselRef{MMSI: mmsi, Latitude: 55, Longitude: 12, SOG: 14},
		Message:   "speed above 10 kn",
		Timestamp: 1000,
	}
}

func TestNotifier_Broadcast(t *testing.T) {
	s := &mockSender{}
	n := NewNotifier(s, nil, nil)

	n.Broadcast(models.VesselUpdate{MMSI: "219000001"})

	if len(s.sent) != 1 || s.sent[0].kind != websocket.MessageTypeVesselUpdate || s.sent[0].to != "" {
		t.Fatalf("sent = %+v", s.sent)
	}
	if got := n.Stats().Broadcasts; got != 1 {
		t.Errorf("Broadcasts = %d", got)
	}

	s.dropBroadcast = true
	n.Broadcast(models.VesselUpdate{MMSI: "219000001"})
	if got := n.Stats().BroadcastDropped; got != 1 {
		t.Errorf("BroadcastDropped = %d", got)
	}
}

func TestNotifier_Recipients(t *testing.T) {
	wl := NewWatchList()
	wl.Add("carol", "219000001")
	wl.Add("bob", "219000001")
	wl.Add("alice", "219000001") // owner, must not appear twice
	wl.Add("dave", "219000999")
	n := NewNotifier(&mockSender{}, wl, nil)

	tests := []struct {
		name string
		v    models.Violation
		want []Recipient
	}{
		{
			name: "zone violation adds watchers",
			v:    zoneViolation("alice", "219000001"),
			want: []Recipient{
				{SubscriberID: "alice"},
				{SubscriberID: "bob", Watched: true},
				{SubscriberID: "carol", Watched: true},
			},
		},
		{
			name: "unwatched vessel reaches owner only",
			v:    zoneViolation("alice", "219000777"),
			want: []Recipient{{SubscriberID: "alice"}},
		},
		{
			name: "collision reaches owner only",
			v: func() models.Violation {
				v := zoneViolation("erin", "219000001")
				v.Kind = models.ViolationCollision
				v.Source = models.ZoneSourceCollision
				return v
			}(),
			want: []Recipient{{SubscriberID: "erin"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Recipients(tt.v); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Recipients = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNotifier_NotifyOwners(t *testing.T) {
	wl := NewWatchList()
	wl.Add("bob", "219000001")
	s := &mockSender{offline: map[string]bool{"carol": true}}
	fwd := &mockForwarder{}
	n := NewNotifier(s, wl, fwd)

	n.NotifyOwners([]models.Violation{
		zoneViolation("alice", "219000001"),
		zoneViolation("carol", "219000002"),
	})

	if len(s.sent) != 2 {
		t.Fatalf("sent = %+v, want alice and bob", s.sent)
	}
	if s.sent[0].to != "alice" || s.sent[1].to != "bob" {
		t.Errorf("order = %s, %s", s.sent[0].to, s.sent[1].to)
	}
	for _, m := range s.sent {
		if m.kind != websocket.MessageTypeViolation {
			t.Errorf("kind = %q", m.kind)
		}
	}
	note, ok := s.sent[1].data.(models.Notification)
	if !ok || !note.Watched || note.ZoneName != "alice's zone" {
		t.Errorf("bob's notification = %+v", s.sent[1].data)
	}

	stats := n.Stats()
	if stats.Private != 2 || stats.PrivateDropped != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if want := []string{"alice", "bob", "carol"}; !reflect.DeepEqual(fwd.items, want) {
		t.Errorf("forwarded = %v, want %v", fwd.items, want)
	}
}

func TestNotifier_NotifyOwnersEmpty(t *testing.T) {
	s := &mockSender{}
	n := NewNotifier(s, nil, nil)
	n.NotifyOwners(nil)
	if len(s.sent) != 0 {
		t.Errorf("sent = %+v", s.sent)
	}
}

func TestWatchList(t *testing.T) {
	wl := NewWatchList()

	if !wl.Add("alice", "219000001") {
		t.Error("first Add returned false")
	}
	if wl.Add("alice", "219000001") {
		t.Error("duplicate Add returned true")
	}
	wl.Add("alice", "219000002")
	wl.Add("bob", "219000001")

	if got := wl.List("alice"); !reflect.DeepEqual(got, []string{"219000001", "219000002"}) {
		t.Errorf("List(alice) = %v", got)
	}
	if got := wl.Watchers("219000001"); !reflect.DeepEqual(got, []string{"alice", "bob"}) {
		t.Errorf("Watchers = %v", got)
	}
	if wl.Len() != 3 {
		t.Errorf("Len = %d", wl.Len())
	}

	if !wl.Remove("alice", "219000001") {
		t.Error("Remove returned false")
	}
	if wl.Remove("alice", "219000001") {
		t.Error("second Remove returned true")
	}
	if got := wl.Watchers("219000001"); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("Watchers after remove = %v", got)
	}
	if got := wl.List("nobody"); len(got) != 0 {
		t.Errorf("List(nobody) = %v", got)
	}
}

func TestWatchList_Load(t *testing.T) {
	wl := NewWatchList()
	wl.Add("stale", "219000009")

	n := wl.Load([]models.WatchEntry{
		{SubscriberID: "alice", MMSI: "219000001"},
		{SubscriberID: "alice", MMSI: "219000001"},
		{SubscriberID: "bob", MMSI: "219000002"},
	})

	if n != 2 || wl.Len() != 2 {
		t.Errorf("Load = %d, Len = %d, want 2", n, wl.Len())
	}
	if got := wl.Watchers("219000009"); len(got) != 0 {
		t.Errorf("stale entry survived Load: %v", got)
	}
}
