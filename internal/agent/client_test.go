// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package agent

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/warden-console/warden/internal/history"
	"github.com/warden-console/warden/internal/logstream"
)

// startFakeAgent runs a websocket server standing in for the agent and a
// connected Client. It returns the client and the server side of the link.
func startFakeAgent(t *testing.T, cfg Config) (*Client, *websocket.Conn) {
	t.Helper()

	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	cfg.URL = "ws" + strings.TrimPrefix(srv.URL, "http")
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 2 * time.Second
	}
	client := NewClient(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = client.Serve(ctx) }()

	select {
	case conn := <-conns:
		t.Cleanup(func() { _ = conn.Close() })
		waitConnected(t, client)
		return client, conn
	case <-time.After(2 * time.Second):
		t.Fatal("agent never received a connection")
		return nil, nil
	}
}

// waitConnected blocks until the client has registered its connection.
func waitConnected(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		ok := c.conn != nil
		c.mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client never connected")
}

func TestSubscribe_ReceivesPushedEvents(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	got := make(chan logstream.Event, 1)
	unsub := client.Subscribe(func(ev logstream.Event) { got <- ev })
	defer unsub()

	ev := logstream.Event{
		Source:   logstream.SourceMC,
		Instance: "vanilla",
		Stream:   logstream.StreamStdout,
		TSUnix:   1700000000,
		Line:     "[Server thread/INFO]: Done (3.2s)!",
	}
	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	if err := conn.WriteJSON(&Envelope{Type: MessageTypeLog, Data: data}); err != nil {
		t.Fatalf("push event: %v", err)
	}

	select {
	case rcvd := <-got:
		if rcvd != ev {
			t.Errorf("received event = %+v, want %+v", rcvd, ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never received the pushed event")
	}
}

func TestSubscribe_UnsubscribeStopsDelivery(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	first := make(chan logstream.Event, 4)
	second := make(chan logstream.Event, 4)
	unsub := client.Subscribe(func(ev logstream.Event) { first <- ev })
	client.Subscribe(func(ev logstream.Event) { second <- ev })
	unsub()

	data, _ := json.Marshal(logstream.Event{Source: logstream.SourceDaemon, Line: "tick"})
	if err := conn.WriteJSON(&Envelope{Type: MessageTypeLog, Data: data}); err != nil {
		t.Fatalf("push event: %v", err)
	}

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining subscriber never received the event")
	}
	select {
	case <-first:
		t.Error("unsubscribed observer still received an event")
	default:
	}
}

func TestSendConsoleLine(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	if err := client.SendConsoleLine(context.Background(), "vanilla", "tps"); err != nil {
		t.Fatalf("SendConsoleLine() error = %v", err)
	}

	var env Envelope
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read console_line frame: %v", err)
	}
	if env.Type != MessageTypeConsoleLine {
		t.Fatalf("frame type = %q, want %q", env.Type, MessageTypeConsoleLine)
	}
	var payload consoleLinePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Instance != "vanilla" || payload.Text != "tps" {
		t.Errorf("payload = %+v, want instance=vanilla text=tps", payload)
	}
}

func TestSendConsoleLine_NotConnected(t *testing.T) {
	client := NewClient(Config{URL: "ws://127.0.0.1:1/ws"})

	err := client.SendConsoleLine(context.Background(), "vanilla", "list")
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendConsoleLine() error = %v, want ErrNotConnected", err)
	}
}

func TestSearchHistory_RoundTrip(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	want := &history.Response{
		Matches: []history.Match{
			{File: "2026-08-29.log", LineNo: 17, Text: "joined the game"},
		},
		Files:     []string{"2026-08-29.log", "2026-08-28.log"},
		Truncated: false,
	}

	go func() {
		var env Envelope
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		data, _ := json.Marshal(want)
		_ = conn.WriteJSON(&Envelope{Type: MessageTypeSearchResult, ID: env.ID, Data: data})
	}()

	got, err := client.SearchHistory(context.Background(), history.Request{
		Instance: "vanilla",
		Query:    "joined",
	})
	if err != nil {
		t.Fatalf("SearchHistory() error = %v", err)
	}
	if len(got.Matches) != 1 || got.Matches[0].Text != "joined the game" {
		t.Errorf("matches = %+v, want one match %q", got.Matches, "joined the game")
	}
	if len(got.Files) != 2 {
		t.Errorf("files = %v, want the two scanned file names", got.Files)
	}
}

func TestSearchHistory_RequestEncoding(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	frames := make(chan Envelope, 1)
	go func() {
		var env Envelope
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		frames <- env
		_ = conn.WriteJSON(&Envelope{Type: MessageTypeSearchResult, ID: env.ID, Data: json.RawMessage(`{}`)})
	}()

	req := history.Request{Instance: "vanilla", Query: "error", IsRegex: true, MaxFiles: 2, MaxMatches: 10}
	if _, err := client.SearchHistory(context.Background(), req); err != nil {
		t.Fatalf("SearchHistory() error = %v", err)
	}

	env := <-frames
	if env.Type != MessageTypeSearchHistory {
		t.Errorf("frame type = %q, want %q", env.Type, MessageTypeSearchHistory)
	}
	if env.ID == "" {
		t.Error("request frame has no correlation id")
	}
	var decoded history.Request
	if err := json.Unmarshal(env.Data, &decoded); err != nil {
		t.Fatalf("decode request payload: %v", err)
	}
	if decoded != req {
		t.Errorf("request payload = %+v, want %+v", decoded, req)
	}
}

func TestSearchHistory_NotFound(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	go func() {
		var env Envelope
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		_ = conn.WriteJSON(&Envelope{Type: MessageTypeSearchResult, ID: env.ID, Code: ErrorCodeNotFound})
	}()

	_, err := client.SearchHistory(context.Background(), history.Request{Instance: "gone", Query: "x"})
	if !errors.Is(err, history.ErrNotFound) {
		t.Errorf("SearchHistory() error = %v, want history.ErrNotFound", err)
	}
}

func TestSearchHistory_AgentError(t *testing.T) {
	client, conn := startFakeAgent(t, Config{})

	go func() {
		var env Envelope
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		_ = conn.WriteJSON(&Envelope{Type: MessageTypeSearchResult, ID: env.ID, Error: "log directory unreadable"})
	}()

	_, err := client.SearchHistory(context.Background(), history.Request{Instance: "vanilla", Query: "x"})
	if err == nil || !strings.Contains(err.Error(), "log directory unreadable") {
		t.Errorf("SearchHistory() error = %v, want agent error surfaced", err)
	}
}

func TestSearchHistory_TimesOut(t *testing.T) {
	client, conn := startFakeAgent(t, Config{SearchTimeout: 50 * time.Millisecond})

	// Drain the request but never answer.
	go func() {
		var env Envelope
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_ = conn.ReadJSON(&env)
	}()

	start := time.Now()
	_, err := client.SearchHistory(context.Background(), history.Request{Instance: "vanilla", Query: "x"})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("SearchHistory() error = %v, want timeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took %s, want ~50ms", elapsed)
	}

	client.mu.Lock()
	pending := len(client.pending)
	client.mu.Unlock()
	if pending != 0 {
		t.Errorf("pending requests after timeout = %d, want 0", pending)
	}
}

func TestDial_SendsBearerToken(t *testing.T) {
	headers := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Get("Authorization")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := NewClient(Config{
		URL:   "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token: "agent-secret",
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = client.Serve(ctx) }()

	select {
	case auth := <-headers:
		if auth != "Bearer agent-secret" {
			t.Errorf("Authorization = %q, want %q", auth, "Bearer agent-secret")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the dial")
	}
}
