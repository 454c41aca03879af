// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"errors"
	"net/http"

	"github.com/warden-console/warden/internal/bookmarks"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/validation"
)

// Bookmarks lists stored bookmarks for an instance, newest first.
func (h *Handler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	instance := r.URL.Query().Get("instance")
	if instance == "" {
		rw.BadRequest("instance query parameter is required")
		return
	}

	list, err := h.engine.Bookmarks.List(instance)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("instance", instance).Msg("failed to load bookmarks")
		rw.InternalError("failed to load bookmarks")
		return
	}
	rw.Success(map[string]any{"bookmarks": list})
}

// ToggleBookmark adds a bookmark on the given line, or removes the nearest
// existing bookmark with identical text.
func (h *Handler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req BookmarkToggleRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	added, err := h.engine.Bookmarks.Toggle(req.Instance, req.View, req.LineIdx, req.Text)
	if err != nil {
		logger := logging.Ctx(r.Context())
		logger.Error().Err(err).Str("instance", req.Instance).Msg("failed to toggle bookmark")
		rw.InternalError("failed to toggle bookmark")
		return
	}
	rw.Success(map[string]any{"added": added})
}

// JumpToBookmark resolves a bookmark to its current position in the live
// view. 404 when the bookmarked line is no longer in the buffer; history
// search is the fallback.
func (h *Handler) JumpToBookmark(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req BookmarkJumpRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	list, err := h.engine.Bookmarks.List(req.Instance)
	if err != nil {
		rw.InternalError("failed to load bookmarks")
		return
	}

	var target *bookmarks.Bookmark
	for i := range list {
		if list[i].ID == req.ID {
			target = &list[i]
			break
		}
	}
	if target == nil {
		rw.NotFound("no bookmark with id " + req.ID)
		return
	}

	pos, err := h.engine.Bookmarks.JumpTo(*target, h.engine.View.Index().Lines)
	if errors.Is(err, bookmarks.ErrNotFound) {
		rw.NotFound("bookmarked line is no longer in the live buffer")
		return
	}
	if err != nil {
		rw.InternalError("failed to resolve bookmark")
		return
	}
	rw.Success(map[string]any{"position": pos})
}
