// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package agent

import "github.com/goccy/go-json"

// Message types on the agent websocket.
const (
	// Agent -> console.
	MessageTypeLog          = "log"
	MessageTypeSearchResult = "search_result"
	MessageTypePong         = "pong"

	// Console -> agent.
	MessageTypeConsoleLine   = "console_line"
	MessageTypeSearchHistory = "search_history"
	MessageTypePing          = "ping"
)

// Error codes the agent reports on failed requests.
const (
	// ErrorCodeNotFound marks an optional file missing on the agent host.
	// Mapped to an empty result, not an error.
	ErrorCodeNotFound = "not_found"
)

// Envelope is the wire frame for every message in both directions. Data
// holds the type-specific payload; ID correlates request/response pairs
// and is empty on pushed messages.
type Envelope struct {
	Type  string          `json:"type"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// consoleLinePayload is the console_line request body.
type consoleLinePayload struct {
	Instance string `json:"instance"`
	Text     string `json:"text"`
}
