// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"

	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/websocket"
)

// upgrader accepts any origin: the console is an operator tool served from
// the same host, and CORS already gates the REST surface.
var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket upgrades the connection and attaches it to the hub for live log
// event, capture output, and agent status pushes.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "live updates not available")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logger := logging.Ctx(r.Context())
		logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	websocket.NewClient(h.hub, conn).Start()
}
