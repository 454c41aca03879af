// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package api

import (
	"net/http"
	"strconv"

	"github.com/warden-console/warden/internal/logview"
	"github.com/warden-console/warden/internal/validation"
)

// lineDTO is the wire shape of one rendered line.
type lineDTO struct {
	Text       string   `json:"text"`
	Level      string   `json:"level,omitempty"`
	IssueClass string   `json:"issueClass,omitempty"`
	Spans      [][2]int `json:"spans,omitempty"`
	TS         int64    `json:"ts,omitempty"`
}

func toLineDTOs(lines []logview.Line) []lineDTO {
	out := make([]lineDTO, len(lines))
	for i, l := range lines {
		out[i] = lineDTO{
			Text:       l.Text,
			Level:      string(l.Level),
			IssueClass: string(l.IssueClass),
			Spans:      l.Spans,
			TS:         l.TSUnix,
		}
	}
	return out
}

// specDTO is the wire shape of the committed view spec.
type specDTO struct {
	Scope     string `json:"scope"`
	Instance  string `json:"instance"`
	Query     string `json:"query"`
	IsRegex   bool   `json:"isRegex"`
	MatchOnly bool   `json:"matchOnly"`
	Level     string `json:"level"`
	TimeMode  string `json:"timeMode"`
}

func toSpecDTO(s logview.Spec) specDTO {
	return specDTO{
		Scope:     string(s.Scope),
		Instance:  s.Instance,
		Query:     s.Query,
		IsRegex:   s.IsRegex,
		MatchOnly: s.MatchOnly,
		Level:     string(s.Level),
		TimeMode:  string(s.TimeMode),
	}
}

// viewStateResponse is the full view snapshot the UI polls between pushes.
type viewStateResponse struct {
	Spec          specDTO         `json:"spec"`
	TotalLines    int             `json:"totalLines"`
	Sentinel      bool            `json:"sentinel"`
	QueryError    string          `json:"queryError,omitempty"`
	MatchPointer  int             `json:"matchPointer"`
	MatchTotal    int             `json:"matchTotal"`
	Paused        bool            `json:"paused"`
	PendingPaused int             `json:"pendingWhilePaused"`
	Follow        bool            `json:"follow"`
	Issues        []logview.Issue `json:"issues,omitempty"`
	Selection     *selectionDTO   `json:"selection,omitempty"`
}

type selectionDTO struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ViewState returns the current committed view state without the line list;
// clients fetch lines through the window endpoint.
func (h *Handler) ViewState(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	view := h.engine.View

	idx := view.Index()
	pointer, total := view.MatchState()

	resp := viewStateResponse{
		Spec:          toSpecDTO(view.Spec()),
		TotalLines:    len(idx.Lines),
		Sentinel:      idx.Sentinel,
		QueryError:    view.QueryError(),
		MatchPointer:  pointer,
		MatchTotal:    total,
		Paused:        h.engine.Buffer.Paused(),
		PendingPaused: h.engine.Buffer.PendingWhilePaused(),
		Follow:        view.Follow(),
		Issues:        idx.Issues,
	}
	if sel := view.Selection(); sel != nil {
		resp.Selection = &selectionDTO{Start: sel.Start, End: sel.End}
	}
	rw.Success(resp)
}

// UpdateFilter applies partial spec changes. Query text is debounced so the
// index is not rebuilt per keystroke; Commit applies it immediately.
func (h *Handler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req FilterUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	view := h.engine.View
	if req.Scope != nil {
		view.SetScope(logview.ViewScope(*req.Scope))
	}
	if req.Instance != nil {
		view.SetInstance(*req.Instance)
	}
	if req.Level != nil {
		view.SetLevel(logview.LevelFilter(*req.Level))
	}
	if req.MatchOnly != nil {
		view.SetMatchOnly(*req.MatchOnly)
	}
	if req.TimeMode != nil {
		view.SetTimeMode(logview.TimeMode(*req.TimeMode))
	}
	if req.Query != nil {
		isRegex := view.Spec().IsRegex
		if req.IsRegex != nil {
			isRegex = *req.IsRegex
		}
		view.SetQuery(*req.Query, isRegex)
		if req.Commit {
			view.CommitQueryNow()
		}
	}

	rw.Success(map[string]any{
		"spec":       toSpecDTO(view.Spec()),
		"queryError": view.QueryError(),
	})
}

type matchPosition struct {
	Position int `json:"position"`
	Pointer  int `json:"pointer"`
	Total    int `json:"total"`
}

// NextMatch advances the match pointer and returns the line to scroll to.
func (h *Handler) NextMatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	pos := h.engine.View.NextMatch()
	pointer, total := h.engine.View.MatchState()
	rw.Success(matchPosition{Position: pos, Pointer: pointer, Total: total})
}

// PrevMatch moves the match pointer backwards; see NextMatch.
func (h *Handler) PrevMatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	pos := h.engine.View.PrevMatch()
	pointer, total := h.engine.View.MatchState()
	rw.Success(matchPosition{Position: pos, Pointer: pointer, Total: total})
}

// Pause freezes the view. New events keep accumulating and are counted.
func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.engine.Pause()
	rw.Success(map[string]any{"paused": true})
}

// Resume returns the view to the live tail.
func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	absorbed := h.engine.Buffer.PendingWhilePaused()
	h.engine.Resume()
	rw.Success(map[string]any{
		"paused":   false,
		"absorbed": absorbed,
	})
}

// ClearView hides everything received so far. Bookmarks and history search
// still see the hidden events.
func (h *Handler) ClearView(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	h.engine.ClearView()
	rw.Success(map[string]any{"cleared": true})
}

// ObserveScroll updates follow-to-bottom from a reported scroll position.
func (h *Handler) ObserveScroll(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ScrollRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	h.engine.View.ObserveScroll(req.ScrollTop, req.ViewportHeight, req.TotalHeight)
	rw.Success(map[string]any{"follow": h.engine.View.Follow()})
}

// windowResponse is one virtualized slice of the filtered line list.
type windowResponse struct {
	Start      int       `json:"start"`
	End        int       `json:"end"`
	TopPad     int       `json:"topPad"`
	BottomPad  int       `json:"bottomPad"`
	TotalLines int       `json:"totalLines"`
	Lines      []lineDTO `json:"lines"`
}

// Window returns the visible slice for the given scroll geometry. With
// wrap=true the full render-capped list is returned, since variable line
// heights make fixed-offset virtualization unreliable.
func (h *Handler) Window(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	idx := h.engine.View.Index()
	total := len(idx.Lines)

	var vp logview.Viewport
	if q.Get("wrap") == "true" {
		vp = logview.WrapWindow(total)
	} else {
		scrollTop := intParam(q.Get("scrollTop"), 0)
		viewportHeight := intParam(q.Get("viewportHeight"), 600)
		lineHeight := intParam(q.Get("lineHeight"), 18)
		overscan := intParam(q.Get("overscan"), 10)
		if lineHeight <= 0 {
			rw.BadRequest("lineHeight must be positive")
			return
		}
		vp = logview.Window(total, scrollTop, viewportHeight, lineHeight, overscan)
	}

	rw.Success(windowResponse{
		Start:      vp.Start,
		End:        vp.End,
		TopPad:     vp.TopPad,
		BottomPad:  vp.BottomPad,
		TotalLines: total,
		Lines:      toLineDTOs(idx.Lines[vp.Start:vp.End]),
	})
}

// Select records a click or shift-click on a filtered line.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if req.Shift {
		h.engine.View.ShiftClick(req.Index)
	} else {
		h.engine.View.Click(req.Index)
	}

	resp := map[string]any{}
	if sel := h.engine.View.Selection(); sel != nil {
		resp["selection"] = selectionDTO{Start: sel.Start, End: sel.End}
	}
	rw.Success(resp)
}

// ExportSelection returns the literal text block for the selected lines.
func (h *Handler) ExportSelection(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]any{"text": h.engine.View.ExportSelection()})
}

func intParam(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
