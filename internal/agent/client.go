// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/warden-console/warden/internal/history"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logstream"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// ErrNotConnected is returned on sends while the agent link is down.
var ErrNotConnected = errors.New("agent: not connected")

// Config holds agent connection settings.
type Config struct {
	// URL is the agent websocket endpoint, e.g. ws://127.0.0.1:24444/ws.
	URL string

	// Token authenticates the console to the agent. Sent as a header;
	// empty disables authentication (development agents).
	Token string

	// DialTimeout bounds each connection attempt. Default: 10s.
	DialTimeout time.Duration

	// ReconnectMin/ReconnectMax bound the backoff between attempts.
	// Defaults: 1s / 30s.
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	// SearchTimeout bounds a history search round trip. Default: 30s.
	SearchTimeout time.Duration

	// OnStatusChange is invoked with true when the link comes up and false
	// when it drops. Called from the serve goroutine; must not block.
	OnStatusChange func(connected bool)
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.DialTimeout == 0 {
		out.DialTimeout = 10 * time.Second
	}
	if out.ReconnectMin == 0 {
		out.ReconnectMin = time.Second
	}
	if out.ReconnectMax == 0 {
		out.ReconnectMax = 30 * time.Second
	}
	if out.SearchTimeout == 0 {
		out.SearchTimeout = 30 * time.Second
	}
	return out
}

// Client maintains the websocket link to the agent. It implements
// suture.Service (Serve) and history.Searcher, and feeds pushed log events
// to registered observers.
type Client struct {
	cfg Config

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan *Envelope

	// wmu serializes writers; gorilla/websocket allows only one
	// concurrent writer per connection.
	wmu sync.Mutex

	subMu     sync.Mutex
	subs      map[uint64]func(logstream.Event)
	nextSubID uint64
}

// NewClient creates an unconnected client; Serve establishes the link.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:     cfg.withDefaults(),
		pending: make(map[string]chan *Envelope),
		subs:    make(map[uint64]func(logstream.Event)),
	}
}

// Subscribe registers an observer for pushed log events and returns an
// unsubscribe function. Callbacks run on the read-loop goroutine and must
// not block.
func (c *Client) Subscribe(fn func(logstream.Event)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Connected reports whether an agent link is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Serve dials the agent and pumps messages until ctx is done, reconnecting
// with exponential backoff. Implements suture.Service.
func (c *Client) Serve(ctx context.Context) error {
	backoff := c.cfg.ReconnectMin

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runConnection(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		logging.Warn().
			Err(err).
			Dur("retry_in", backoff).
			Str("url", c.cfg.URL).
			Msg("agent connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > c.cfg.ReconnectMax {
			backoff = c.cfg.ReconnectMax
		}
	}
}

// runConnection performs one dial + read-loop cycle.
func (c *Client) runConnection(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()

	dialer := websocket.Dialer{}
	header := map[string][]string{}
	if c.cfg.Token != "" {
		header["Authorization"] = []string{"Bearer " + c.cfg.Token}
	}

	conn, resp, err := dialer.DialContext(dialCtx, c.cfg.URL, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial agent (%s): %w", resp.Status, err)
		}
		return fmt.Errorf("dial agent: %w", err)
	}
	defer conn.Close()

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.notifyStatus(true)
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.failPendingLocked()
		c.mu.Unlock()
		c.notifyStatus(false)
	}()

	logging.Info().Str("url", c.cfg.URL).Msg("agent connected")

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Keepalive pings and context cancellation share a goroutine; closing
	// the conn unblocks the read loop below.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				c.wmu.Lock()
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				c.wmu.Unlock()
				if err != nil {
					_ = conn.Close()
					return
				}
			}
		}
	}()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				return fmt.Errorf("read agent message: %w", err)
			}
			return err
		}
		c.handleMessage(&env)
	}
}

// handleMessage routes one inbound frame.
func (c *Client) handleMessage(env *Envelope) {
	switch env.Type {
	case MessageTypeLog:
		var ev logstream.Event
		if err := json.Unmarshal(env.Data, &ev); err != nil {
			logging.Error().Err(err).Msg("malformed log event from agent")
			return
		}
		c.subMu.Lock()
		callbacks := make([]func(logstream.Event), 0, len(c.subs))
		for _, fn := range c.subs {
			callbacks = append(callbacks, fn)
		}
		c.subMu.Unlock()
		for _, fn := range callbacks {
			fn(ev)
		}

	case MessageTypeSearchResult:
		c.mu.Lock()
		ch, ok := c.pending[env.ID]
		if ok {
			delete(c.pending, env.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- env
		}

	case MessageTypePong:
		// Keepalive only.

	default:
		logging.Debug().Str("type", env.Type).Msg("unhandled agent message")
	}
}

// SendConsoleLine writes a console line to the instance's process stdin.
// Fire-and-forget: there is no structured reply.
func (c *Client) SendConsoleLine(ctx context.Context, instance, text string) error {
	data, err := json.Marshal(consoleLinePayload{Instance: instance, Text: text})
	if err != nil {
		return fmt.Errorf("encode console line: %w", err)
	}
	return c.write(&Envelope{Type: MessageTypeConsoleLine, Data: data})
}

// SearchHistory runs a search over the agent's stored log files.
// Implements history.Searcher.
func (c *Client) SearchHistory(ctx context.Context, req history.Request) (*history.Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	id := uuid.New().String()
	ch := make(chan *Envelope, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.write(&Envelope{Type: MessageTypeSearchHistory, ID: id, Data: data}); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	timeout := time.NewTimer(c.cfg.SearchTimeout)
	defer timeout.Stop()

	select {
	case <-ctx.Done():
		c.abandon(id)
		return nil, ctx.Err()
	case <-timeout.C:
		c.abandon(id)
		return nil, fmt.Errorf("agent: search timed out after %s", c.cfg.SearchTimeout)
	case env := <-ch:
		if env == nil {
			return nil, ErrNotConnected
		}
		if env.Code == ErrorCodeNotFound {
			return nil, history.ErrNotFound
		}
		if env.Error != "" {
			return nil, fmt.Errorf("agent: search failed: %s", env.Error)
		}
		var resp history.Response
		if err := json.Unmarshal(env.Data, &resp); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		return &resp, nil
	}
}

// write sends one frame on the current connection.
func (c *Client) write(env *Envelope) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return ErrNotConnected
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(env); err != nil {
		return fmt.Errorf("write to agent: %w", err)
	}
	return nil
}

func (c *Client) notifyStatus(connected bool) {
	if c.cfg.OnStatusChange != nil {
		c.cfg.OnStatusChange(connected)
	}
}

// abandon drops a pending request after timeout or cancellation.
func (c *Client) abandon(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// failPendingLocked unblocks every waiter when the connection drops.
// Callers hold c.mu.
func (c *Client) failPendingLocked() {
	for id, ch := range c.pending {
		delete(c.pending, id)
		ch <- nil
	}
}
