// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/warden-console/warden/internal/agent"
	"github.com/warden-console/warden/internal/history"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logview"
	"github.com/warden-console/warden/internal/validation"
)

// HistorySearch searches the agent's stored log files for an instance. Live
// view filters never apply here; the query travels to the agent as-is.
func (h *Handler) HistorySearch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req HistorySearchRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.engine.Search.Search(r.Context(), history.Request{
		Instance:      req.Instance,
		Query:         req.Query,
		IsRegex:       req.IsRegex,
		MaxFiles:      req.MaxFiles,
		MaxMatches:    req.MaxMatches,
		ContextBefore: req.ContextBefore,
		ContextAfter:  req.ContextAfter,
	})
	if err != nil {
		h.historySearchError(rw, r, req.Instance, err)
		return
	}
	rw.Success(resp)
}

// historySearchError maps search failures to API responses: invalid queries
// are the caller's fault, everything transport-shaped is a 503.
func (h *Handler) historySearchError(rw *ResponseWriter, r *http.Request, instance string, err error) {
	switch {
	case errors.Is(err, logview.ErrPatternTooLong):
		rw.BadRequest("query pattern too long")
	case errors.Is(err, history.ErrInvalidQuery):
		rw.BadRequest(err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		rw.AgentUnavailable("history search suspended after repeated agent failures")
	case errors.Is(err, agent.ErrNotConnected):
		rw.AgentUnavailable("agent is not connected")
	default:
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("instance", instance).Msg("history search failed")
		rw.AgentUnavailable("history search failed")
	}
}
