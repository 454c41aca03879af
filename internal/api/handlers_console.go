// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warden-console/warden/internal/console"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/validation"
)

// Dispatch sends a console command to an instance. The send is
// fire-and-forget: an output capture opens even when the transport errors,
// since the command may have reached the process. Delivered reports whether
// the send itself succeeded.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req DispatchRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	captureID, err := h.engine.Dispatch(r.Context(), req.Instance, req.Cmd)
	if errors.Is(err, console.ErrRateLimited) {
		rw.TooManyRequests("dispatch rate limit exceeded for instance " + req.Instance)
		return
	}
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Warn().
			Err(err).
			Str("instance", req.Instance).
			Msg("console command send failed")
	}

	rw.Success(map[string]any{
		"captureId": captureID,
		"delivered": err == nil,
	})
}

// Outputs returns recent finalized command captures, newest first.
func (h *Handler) Outputs(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]any{
		"outputs":   h.engine.Captures.Outputs(),
		"capturing": h.engine.Captures.Capturing(),
	})
}

// OutputByID returns one finalized capture.
func (h *Handler) OutputByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	out, ok := h.engine.Captures.Output(id)
	if !ok {
		rw.NotFound("no capture with id " + id)
		return
	}
	rw.Success(out)
}

// TPS reports the most recent parsable TPS reading from captured output.
func (h *Handler) TPS(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	tps, ok := h.engine.LatestTPS()
	if !ok {
		rw.Success(map[string]any{"available": false})
		return
	}
	rw.Success(map[string]any{
		"available": true,
		"oneMin":    tps[0],
		"fiveMin":   tps[1],
		"fifteen":   tps[2],
	})
}

// CommandHistory lists previously dispatched commands for an instance,
// newest first.
func (h *Handler) CommandHistory(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	instance := r.URL.Query().Get("instance")
	if instance == "" {
		rw.BadRequest("instance query parameter is required")
		return
	}

	cmds, err := h.engine.CmdHistory.List(instance)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("instance", instance).Msg("failed to load command history")
		rw.InternalError("failed to load command history")
		return
	}
	rw.Success(map[string]any{"commands": cmds})
}

// Instances returns the instance inventory derived from the live buffer,
// served stale-while-revalidate.
func (h *Handler) Instances(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	key := "instances"
	val, err := h.cache.GetOrFetch(r.Context(), key, h.listInstances)
	if err != nil {
		rw.InternalError("failed to list instances")
		return
	}
	rw.Success(map[string]any{"instances": val})
}
