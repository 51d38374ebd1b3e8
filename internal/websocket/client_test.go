// Shipwatch - AIS Vessel Tracking and Maritime Rule Monitoring
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shipwatch

package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// setupWebSocketServer serves /ws by binding every connection to the
// subscriber named in the "sub" query parameter.
func setupWebSocketServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("sub"))
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(server.Close)
	return server
}

// dialWebSocket connects as subscriber and waits for registration.
func dialWebSocket(t *testing.T, hub *Hub, server *httptest.Server, subscriber string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sub=" + subscriber
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	waitFor(t, func() bool { return hub.IsConnected(subscriber) })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal %s: %v", data, err)
	}
	return out
}

func TestNewClient(t *testing.T) {
	hub := NewHub(4)
	c1 := NewClient(hub, nil, "alice")
	c2 := NewClient(hub, nil, "alice")

	if c2.ID() <= c1.ID() {
		t.Errorf("IDs not increasing: %d then %d", c1.ID(), c2.ID())
	}
	if c1.SubscriberID() != "alice" {
		t.Errorf("SubscriberID = %q", c1.SubscriberID())
	}
	if cap(c1.send) != sendBufferSize {
		t.Errorf("send buffer = %d, want %d", cap(c1.send), sendBufferSize)
	}
}

func TestClient_ReceivesPublicAndPrivate(t *testing.T) {
	hub := setupHub(t, 16)
	server := setupWebSocketServer(t, hub)

	alice := dialWebSocket(t, hub, server, "alice")
	bob := dialWebSocket(t, hub, server, "bob")

	hub.Broadcast(MessageTypeVesselUpdate, map[string]string{"mmsi": "219000001"})
	hub.SendTo("alice", MessageTypeViolation, map[string]string{"kind": "speed_above"})

	if msg := readMessage(t, alice); msg["type"] != MessageTypeVesselUpdate {
		t.Errorf("alice first message = %v", msg)
	}
	if msg := readMessage(t, alice); msg["type"] != MessageTypeViolation {
		t.Errorf("alice second message = %v", msg)
	}
	if msg := readMessage(t, bob); msg["type"] != MessageTypeVesselUpdate {
		t.Errorf("bob message = %v", msg)
	}

	_ = bob.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if _, data, err := bob.ReadMessage(); err == nil {
		t.Errorf("bob received a private message: %s", data)
	}
}

func TestClient_PingPong(t *testing.T) {
	hub := setupHub(t, 16)
	server := setupWebSocketServer(t, hub)
	conn := dialWebSocket(t, hub, server, "alice")

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if msg := readMessage(t, conn); msg["type"] != MessageTypePong {
		t.Errorf("got %v, want pong", msg)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := setupHub(t, 16)
	server := setupWebSocketServer(t, hub)
	conn := dialWebSocket(t, hub, server, "alice")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitFor(t, func() bool { return !hub.IsConnected("alice") })
}

func TestClientConstants(t *testing.T) {
	if pingPeriod >= pongWait {
		t.Errorf("pingPeriod %v must be below pongWait %v", pingPeriod, pongWait)
	}
	if writeWait != 10*time.Second {
		t.Errorf("writeWait = %v", writeWait)
	}
}
