// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"net/http"
	"time"
)

// healthStatus is the health endpoint payload.
type healthStatus struct {
	Status         string  `json:"status"`
	Version        string  `json:"version"`
	AgentConnected bool    `json:"agentConnected"`
	BufferedEvents int     `json:"bufferedEvents"`
	UISessions     int     `json:"uiSessions"`
	UptimeSeconds  float64 `json:"uptimeSeconds"`
}

// Health reports overall status. The console keeps serving buffered logs
// while the agent is down, so a lost agent link degrades rather than fails.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := "healthy"
	if !h.agentConnected() {
		status = "degraded"
	}

	sessions := 0
	if h.hub != nil {
		sessions = h.hub.ClientCount()
	}

	rw.Success(healthStatus{
		Status:         status,
		Version:        h.version,
		AgentConnected: h.agentConnected(),
		BufferedEvents: h.engine.Buffer.Len(),
		UISessions:     sessions,
		UptimeSeconds:  time.Since(h.startTime).Seconds(),
	})
}

// HealthLive is the liveness probe: 200 whenever the process serves.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe. The engine is usable without the
// agent, so readiness only requires the engine to be wired.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.engine == nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "engine not initialized")
		return
	}
	rw.Success(map[string]any{
		"ready":          true,
		"agentConnected": h.agentConnected(),
	})
}
