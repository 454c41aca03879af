// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// setupSocketServer upgrades incoming connections and attaches them to hub.
func setupSocketServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(hub, conn).Start()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dialSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestClient_ReceivesBroadcast(t *testing.T) {
	hub := newHubForTest(t)
	srv := setupSocketServer(t, hub)
	conn := dialSocket(t, srv)
	waitForCount(t, hub, func(n int) bool { return n == 1 })

	hub.BroadcastAgentStatus(false, "ws://127.0.0.1:24444/ws")

	var msg Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Type != MessageTypeAgentStatus {
		t.Errorf("type = %q, want %q", msg.Type, MessageTypeAgentStatus)
	}
	data, ok := msg.Data.(map[string]any)
	if !ok {
		t.Fatalf("data = %#v, want object", msg.Data)
	}
	if data["connected"] != false {
		t.Errorf("connected = %v, want false", data["connected"])
	}
}

func TestClient_PingGetsPong(t *testing.T) {
	hub := newHubForTest(t)
	srv := setupSocketServer(t, hub)
	conn := dialSocket(t, srv)
	waitForCount(t, hub, func(n int) bool { return n == 1 })

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write ping: %v", err)
	}

	var msg Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read pong: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("type = %q, want %q", msg.Type, MessageTypePong)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	hub := newHubForTest(t)
	srv := setupSocketServer(t, hub)
	conn := dialSocket(t, srv)
	waitForCount(t, hub, func(n int) bool { return n == 1 })

	_ = conn.Close()
	waitForCount(t, hub, func(n int) bool { return n == 0 })
}

func TestClient_MultipleUIsShareTheStream(t *testing.T) {
	hub := newHubForTest(t)
	srv := setupSocketServer(t, hub)

	conns := make([]*websocket.Conn, 3)
	for i := range conns {
		conns[i] = dialSocket(t, srv)
	}
	waitForCount(t, hub, func(n int) bool { return n == 3 })

	hub.BroadcastViewInvalidate("vanilla")

	for i, conn := range conns {
		var msg Message
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("ui %d read: %v", i, err)
		}
		if msg.Type != MessageTypeViewInvalidate {
			t.Errorf("ui %d: type = %q, want %q", i, msg.Type, MessageTypeViewInvalidate)
		}
	}
}

func TestServe_ReturnsContextError(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve never returned")
	}
}
