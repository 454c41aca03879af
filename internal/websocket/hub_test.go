// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/warden-console/warden/internal/logstream"
)

// newHubForTest runs a hub under a cancellable context and returns it.
func newHubForTest(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = hub.Serve(ctx) }()
	return hub
}

// fakeClient builds a hub-side client without a real socket.
func fakeClient(buffer int) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		send: make(chan Message, buffer),
	}
}

func register(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	select {
	case hub.Register <- c:
	case <-time.After(2 * time.Second):
		t.Fatal("hub never accepted the registration")
	}
	waitForCount(t, hub, func(n int) bool { return n >= 1 })
}

func waitForCount(t *testing.T, hub *Hub, ok func(int) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ok(hub.ClientCount()) {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count never settled, have %d", hub.ClientCount())
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	hub := newHubForTest(t)

	a := fakeClient(4)
	b := fakeClient(4)
	register(t, hub, a)
	register(t, hub, b)
	waitForCount(t, hub, func(n int) bool { return n == 2 })

	ev := logstream.Event{Source: logstream.SourceMC, Instance: "vanilla", Line: "Done (3.2s)!"}
	hub.BroadcastLogEvent(ev)

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case msg := <-c.send:
			if msg.Type != MessageTypeLogEvent {
				t.Errorf("client %s: type = %q, want %q", name, msg.Type, MessageTypeLogEvent)
			}
			if got, ok := msg.Data.(logstream.Event); !ok || got != ev {
				t.Errorf("client %s: data = %#v, want %#v", name, msg.Data, ev)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s never received the broadcast", name)
		}
	}
}

func TestHub_SlowClientDropped(t *testing.T) {
	hub := newHubForTest(t)

	slow := fakeClient(0)
	healthy := fakeClient(4)
	register(t, hub, slow)
	register(t, hub, healthy)
	waitForCount(t, hub, func(n int) bool { return n == 2 })

	hub.BroadcastViewInvalidate("vanilla")

	// The zero-buffer client cannot accept the message and gets dropped;
	// the healthy one still receives it.
	select {
	case <-healthy.send:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy client never received the broadcast")
	}
	waitForCount(t, hub, func(n int) bool { return n == 1 })

	// Dropped client's channel is closed.
	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("slow client received a message instead of being dropped")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("slow client channel never closed")
	}
}

func TestHub_UnregisterClosesChannel(t *testing.T) {
	hub := newHubForTest(t)

	c := fakeClient(4)
	register(t, hub, c)

	select {
	case hub.Unregister <- c:
	case <-time.After(2 * time.Second):
		t.Fatal("hub never accepted the unregister")
	}
	waitForCount(t, hub, func(n int) bool { return n == 0 })

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("unexpected message on unregistered client")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send channel never closed after unregister")
	}
}

func TestHub_ShutdownClosesAllClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- hub.Serve(ctx) }()

	a := fakeClient(4)
	b := fakeClient(4)
	register(t, hub, a)
	register(t, hub, b)
	waitForCount(t, hub, func(n int) bool { return n == 2 })

	cancel()

	select {
	case err := <-served:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve never returned after cancel")
	}

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case _, ok := <-c.send:
			if ok {
				t.Errorf("client %s received a message during shutdown", name)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("client %s channel never closed on shutdown", name)
		}
	}
	if hub.ClientCount() != 0 {
		t.Errorf("client count after shutdown = %d, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastHelpersSetTypes(t *testing.T) {
	hub := newHubForTest(t)
	c := fakeClient(8)
	register(t, hub, c)

	hub.BroadcastCaptureOutput("vanilla", "x", "tps", []string{"TPS: 20"})
	hub.BroadcastAgentStatus(true, "ws://127.0.0.1:24444/ws")
	hub.BroadcastViewInvalidate("vanilla")

	want := []string{MessageTypeCaptureOutput, MessageTypeAgentStatus, MessageTypeViewInvalidate}
	for _, wantType := range want {
		select {
		case msg := <-c.send:
			if msg.Type != wantType {
				t.Errorf("message type = %q, want %q", msg.Type, wantType)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("never received %s", wantType)
		}
	}
}
