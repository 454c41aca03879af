// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
)

// FilterUpdateRequest carries partial view spec changes. Nil fields are left
// untouched. Query changes are debounced unless Commit is set.
type FilterUpdateRequest struct {
	Scope     *string `json:"scope" validate:"omitempty,oneof=all mc install frp"`
	Instance  *string `json:"instance" validate:"omitempty,max=64"`
	Query     *string `json:"query" validate:"omitempty,max=512"`
	IsRegex   *bool   `json:"isRegex"`
	MatchOnly *bool   `json:"matchOnly"`
	Level     *string `json:"level" validate:"omitempty,oneof=all warn error"`
	TimeMode  *string `json:"timeMode" validate:"omitempty,oneof=local relative"`
	Commit    bool    `json:"commit"`
}

// ScrollRequest reports the UI scroll position after a user scroll.
type ScrollRequest struct {
	ScrollTop      int `json:"scrollTop" validate:"min=0"`
	ViewportHeight int `json:"viewportHeight" validate:"required,min=1"`
	TotalHeight    int `json:"totalHeight" validate:"min=0"`
}

// SelectRequest is a click or shift-click on a filtered line.
type SelectRequest struct {
	Index int  `json:"index" validate:"min=0"`
	Shift bool `json:"shift"`
}

// DispatchRequest sends one console command to an instance.
type DispatchRequest struct {
	Instance string `json:"instance" validate:"required,max=64"`
	Cmd      string `json:"cmd" validate:"required,max=256"`
}

// BookmarkToggleRequest toggles a bookmark on a rendered line.
type BookmarkToggleRequest struct {
	Instance string `json:"instance" validate:"required,max=64"`
	View     string `json:"view" validate:"required,max=32"`
	LineIdx  int    `json:"lineIdx" validate:"min=0"`
	Text     string `json:"text" validate:"required"`
}

// BookmarkJumpRequest resolves a stored bookmark against the live view.
type BookmarkJumpRequest struct {
	Instance string `json:"instance" validate:"required,max=64"`
	ID       string `json:"id" validate:"required"`
}

// HistorySearchRequest searches the agent's stored log files.
type HistorySearchRequest struct {
	Instance      string `json:"instance" validate:"required,max=64"`
	Query         string `json:"query" validate:"required,max=512"`
	IsRegex       bool   `json:"isRegex"`
	MaxFiles      int    `json:"maxFiles" validate:"omitempty,min=1,max=20"`
	MaxMatches    int    `json:"maxMatches" validate:"omitempty,min=1,max=5000"`
	ContextBefore int    `json:"contextBefore" validate:"min=0,max=10"`
	ContextAfter  int    `json:"contextAfter" validate:"min=0,max=10"`
}

// decodeJSON reads the request body into dst, rejecting unknown fields so
// client typos surface instead of silently no-oping.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
