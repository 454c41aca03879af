// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logstream"
	"github.com/warden-console/warden/internal/metrics"
)

// Message types pushed to operator UIs.
const (
	MessageTypeLogEvent       = "log_event"
	MessageTypeCaptureOutput  = "capture_output"
	MessageTypeAgentStatus    = "agent_status"
	MessageTypeViewInvalidate = "view_invalidate"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message is one frame on the UI websocket.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub maintains the set of connected operator UIs and broadcasts to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub. Run it with Serve under the supervision tree.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Serve runs the hub until ctx is done, then closes every client and
// returns ctx.Err(). Implements suture.Service.
//
// Selection is priority-ordered: shutdown first, then client lifecycle,
// then broadcasts. Go's select picks randomly among ready channels, so a
// plain select would let a broadcast race ahead of an unregister and write
// to a closed client.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
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
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("operator ui connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("operator ui disconnected")
}

// shutdown closes all clients and logs the reason. Context cancellation is
// the normal SIGTERM path, not an error.
func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := sortedClientsLocked(h.clients)
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

// broadcastToClients delivers one message to every client in id order.
// Iteration is sorted so delivery order is reproducible under test; a
// client with a full send channel is dropped rather than awaited.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := sortedClientsLocked(h.clients)

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WSMessagesSent.Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("dropping slow operator ui")
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func sortedClientsLocked(set map[*Client]bool) []*Client {
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// BroadcastLogEvent pushes one appended log event to all UIs.
func (h *Hub) BroadcastLogEvent(ev logstream.Event) {
	h.enqueue(Message{Type: MessageTypeLogEvent, Data: ev})
}

// CaptureOutputData accompanies a capture_output message.
type CaptureOutputData struct {
	Instance string   `json:"instance"`
	ID       string   `json:"id"`
	Cmd      string   `json:"cmd"`
	Lines    []string `json:"lines"`
}

// BroadcastCaptureOutput announces a finalized command output capture.
func (h *Hub) BroadcastCaptureOutput(instance, id, cmd string, lines []string) {
	h.enqueue(Message{Type: MessageTypeCaptureOutput, Data: CaptureOutputData{
		Instance: instance,
		ID:       id,
		Cmd:      cmd,
		Lines:    lines,
	}})
}

// AgentStatusData accompanies an agent_status message.
type AgentStatusData struct {
	Connected bool   `json:"connected"`
	URL       string `json:"url"`
}

// BroadcastAgentStatus announces an agent link transition.
func (h *Hub) BroadcastAgentStatus(connected bool, url string) {
	h.enqueue(Message{Type: MessageTypeAgentStatus, Data: AgentStatusData{Connected: connected, URL: url}})
}

// BroadcastViewInvalidate tells UIs to refetch the filtered view for an
// instance after a server-side change (watermark clear, filter update).
func (h *Hub) BroadcastViewInvalidate(instance string) {
	h.enqueue(Message{Type: MessageTypeViewInvalidate, Data: map[string]string{"instance": instance}})
}

func (h *Hub) enqueue(message Message) {
	select {
	case h.broadcast <- message:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("message_type", message.Type).Msg("broadcast channel full, dropping message")
	}
}

// ClientCount returns the number of connected UIs.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
