// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"context"
	"sort"
	"time"

	"github.com/warden-console/warden/internal/cache"
	"github.com/warden-console/warden/internal/console"
	"github.com/warden-console/warden/internal/websocket"
)

// AgentStatus reports the state of the agent link for health endpoints.
type AgentStatus interface {
	Connected() bool
}

// Handler holds the collaborators every endpoint works against.
type Handler struct {
	engine    *console.Engine
	hub       *websocket.Hub
	cache     *cache.Cache
	agent     AgentStatus
	version   string
	startTime time.Time
}

// NewHandler creates a Handler. hub and agent may be nil in tests; endpoints
// that need them degrade to their disconnected behavior.
func NewHandler(engine *console.Engine, hub *websocket.Hub, c *cache.Cache, agent AgentStatus, version string) *Handler {
	return &Handler{
		engine:    engine,
		hub:       hub,
		cache:     c,
		agent:     agent,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) agentConnected() bool {
	return h.agent != nil && h.agent.Connected()
}

// instanceInfo is one row of the instance inventory.
type instanceInfo struct {
	Name      string `json:"name"`
	Events    int    `json:"events"`
	LastTS    int64  `json:"lastTs"`
	Capturing bool   `json:"capturing"`
}

// listInstances derives the instance inventory from the live buffer. Served
// through the stale-while-revalidate cache; the scan walks the full buffer.
func (h *Handler) listInstances(_ context.Context) (any, error) {
	counts := make(map[string]*instanceInfo)
	for _, ev := range h.engine.Buffer.All() {
		if ev.Instance == "" {
			continue
		}
		info, ok := counts[ev.Instance]
		if !ok {
			info = &instanceInfo{Name: ev.Instance}
			counts[ev.Instance] = info
		}
		info.Events++
		if ev.TSUnix > info.LastTS {
			info.LastTS = ev.TSUnix
		}
	}

	capturing := h.engine.Captures.Capturing()
	current := h.engine.View.Spec().Instance

	out := make([]instanceInfo, 0, len(counts))
	for _, info := range counts {
		if capturing && info.Name == current {
			info.Capturing = true
		}
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
