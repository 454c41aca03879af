// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"sync"
	"time"

	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/logstream"
)

// DebounceInterval is how long after the last keystroke a pending query is
// committed, so the index is not rebuilt per character.
const DebounceInterval = 160 * time.Millisecond

// View is the stateful coordinator for one session's filtered view. It owns
// the current Spec, the last-known-good Index (fail-soft regex handling),
// the match navigator, the selection, and follow-to-bottom state.
//
// All methods are safe for concurrent use. Derived state is rebuilt lazily:
// buffer growth marks the view dirty and the next read recomputes.
type View struct {
	mu       sync.Mutex
	buffer   *logstream.Buffer
	clk      clock.Clock
	spec     Spec
	dirty    bool
	index    *Index
	queryErr string

	pendingQuery   string
	pendingIsRegex bool
	debounce       clock.Timer

	nav       Navigator
	selection SelectionStore
	follow    bool

	unsubscribe func()
}

// NewView creates a View over the buffer for the given instance, following
// the live tail by default.
func NewView(buffer *logstream.Buffer, instance string, clk clock.Clock) *View {
	v := &View{
		buffer: buffer,
		clk:    clk,
		spec:   DefaultSpec(instance),
		dirty:  true,
		follow: true,
	}
	v.unsubscribe = buffer.Subscribe(func(logstream.Event, int) {
		v.mu.Lock()
		v.dirty = true
		v.mu.Unlock()
	})
	return v
}

// Close detaches the view from the buffer.
func (v *View) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
	}
}

// Spec returns a copy of the current (committed) spec.
func (v *View) Spec() Spec {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.spec
}

// Index returns the current index, rebuilding it first if the buffer or the
// spec changed. On a query compile failure the previous valid index is
// returned and QueryError reports the failure.
func (v *View) Index() *Index {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	return v.index
}

// QueryError returns the active query's compile failure, empty when the
// committed query is valid.
func (v *View) QueryError() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	return v.queryErr
}

// rebuildLocked recomputes the index when dirty. Fail-soft: a broken query
// keeps the last-known-good index and records the error.
func (v *View) rebuildLocked() {
	if !v.dirty && v.index != nil {
		return
	}

	idx, err := BuildIndex(v.buffer.Snapshot(), v.buffer.Watermark(), v.spec, v.clk.Now())
	if err != nil {
		v.queryErr = err.Error()
		v.dirty = false
		if v.index == nil {
			v.index = &Index{}
		}
		return
	}

	v.queryErr = ""
	v.index = idx
	v.nav.SetMatches(idx.Matches)
	v.dirty = false
}

// SetQuery schedules a query commit after DebounceInterval. A newer call
// supersedes the pending one; only the final query is committed.
func (v *View) SetQuery(query string, isRegex bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pendingQuery = query
	v.pendingIsRegex = isRegex
	if v.debounce != nil {
		v.debounce.Stop()
	}
	v.debounce = v.clk.AfterFunc(DebounceInterval, v.commitQuery)
}

// CommitQueryNow applies the pending query immediately, canceling any
// debounce in flight. Used when the operator presses enter.
func (v *View) CommitQueryNow() {
	v.mu.Lock()
	if v.debounce != nil {
		v.debounce.Stop()
		v.debounce = nil
	}
	v.mu.Unlock()
	v.commitQuery()
}

func (v *View) commitQuery() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.spec.Query == v.pendingQuery && v.spec.IsRegex == v.pendingIsRegex {
		return
	}
	v.spec.Query = v.pendingQuery
	v.spec.IsRegex = v.pendingIsRegex
	v.dirty = true
	v.rebuildLocked()
	if v.queryErr == "" {
		v.nav.Reset(v.index.Matches)
	}
}

// SetScope switches the view scope and rewinds match navigation.
func (v *View) SetScope(scope ViewScope) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.spec.Scope == scope {
		return
	}
	v.spec.Scope = scope
	v.resetLocked()
}

// SetInstance retargets the view at another instance and rewinds match
// navigation.
func (v *View) SetInstance(instance string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.spec.Instance == instance {
		return
	}
	v.spec.Instance = instance
	v.resetLocked()
}

func (v *View) resetLocked() {
	v.dirty = true
	v.rebuildLocked()
	if v.queryErr == "" {
		v.nav.Reset(v.index.Matches)
	}
}

// SetLevel applies a severity filter.
func (v *View) SetLevel(level LevelFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spec.Level = level
	v.dirty = true
}

// SetMatchOnly toggles hiding of non-matching lines.
func (v *View) SetMatchOnly(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spec.MatchOnly = on
	v.dirty = true
}

// SetTimeMode switches timestamp rendering.
func (v *View) SetTimeMode(mode TimeMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.spec.TimeMode = mode
	v.dirty = true
}

// NextMatch moves to the next match and returns the line position to scroll
// into view (-1 when no matches). Manual navigation disengages follow.
func (v *View) NextMatch() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	v.follow = false
	return v.nav.Next()
}

// PrevMatch moves to the previous match; see NextMatch.
func (v *View) PrevMatch() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	v.follow = false
	return v.nav.Prev()
}

// MatchState returns the pointer ordinal and total match count.
func (v *View) MatchState() (pointer, total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	return v.nav.Pointer(), v.nav.Len()
}

// Follow reports whether the view is pinned to the live tail.
func (v *View) Follow() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.follow
}

// ObserveScroll updates follow state from a scroll position: follow engages
// only near the bottom and never while the view is paused.
func (v *View) ObserveScroll(scrollTop, viewportHeight, totalHeight int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.follow = NearBottom(scrollTop, viewportHeight, totalHeight) && !v.buffer.Paused()
}

// Pause freezes the view at the current buffer state.
func (v *View) Pause() {
	v.buffer.Pause()
	v.mu.Lock()
	v.follow = false
	v.dirty = true
	v.mu.Unlock()
}

// Resume returns the view to the live buffer.
func (v *View) Resume() {
	v.buffer.Resume()
	v.mu.Lock()
	v.dirty = true
	v.mu.Unlock()
}

// ClearView hides everything received so far via the buffer watermark.
// Bookmarks and history search still see the hidden events.
func (v *View) ClearView() {
	cutoff := v.clk.Now().Unix()
	for _, ev := range v.buffer.All() {
		if ev.TSUnix > cutoff {
			cutoff = ev.TSUnix
		}
	}
	v.buffer.SetWatermark(cutoff)
	v.mu.Lock()
	v.dirty = true
	v.mu.Unlock()
}

// Click collapses the selection to the given filtered-line index.
func (v *View) Click(idx int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.Click(idx)
}

// ShiftClick extends the selection from its anchor to idx.
func (v *View) ShiftClick(idx int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection.ShiftClick(idx)
}

// Selection returns the current selection clamped to the current line list,
// nil when nothing is selected.
func (v *View) Selection() *Selection {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	return v.selection.Clamp(len(v.index.Lines))
}

// ExportSelection returns the literal text block for the selected lines.
func (v *View) ExportSelection() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rebuildLocked()
	return v.selection.Export(v.index.Lines)
}
