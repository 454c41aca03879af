// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import "strings"

// Selection is a single contiguous range of filtered-line indices,
// normalized so Start <= End. Inclusive on both ends.
type Selection struct {
	Start int
	End   int
}

// SelectionStore tracks the current selection and its anchor for
// shift-click extension.
type SelectionStore struct {
	anchor    int
	selection *Selection
}

// Click collapses the selection to the clicked index and re-anchors there.
func (s *SelectionStore) Click(idx int) {
	if idx < 0 {
		return
	}
	s.anchor = idx
	s.selection = &Selection{Start: idx, End: idx}
}

// ShiftClick extends from the prior anchor to idx, normalized. Without a
// prior selection it behaves like Click.
func (s *SelectionStore) ShiftClick(idx int) {
	if idx < 0 {
		return
	}
	if s.selection == nil {
		s.Click(idx)
		return
	}
	sel := Selection{Start: s.anchor, End: idx}
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	s.selection = &sel
}

// Clear drops the selection.
func (s *SelectionStore) Clear() {
	s.selection = nil
}

// Get returns the current selection, nil when nothing is selected. The
// stored range may exceed the current list bounds after the filtered list
// shrinks; consumers must Clamp before export.
func (s *SelectionStore) Get() *Selection {
	if s.selection == nil {
		return nil
	}
	sel := *s.selection
	return &sel
}

// Clamp returns the selection clamped into a list of length n, or nil when
// the selection no longer intersects the list.
func (s *SelectionStore) Clamp(n int) *Selection {
	if s.selection == nil || n <= 0 || s.selection.Start >= n {
		return nil
	}
	sel := *s.selection
	if sel.End > n-1 {
		sel.End = n - 1
	}
	return &sel
}

// Export produces the literal text block for the selected range of lines,
// independent of filtering mode. Lines outside the current list are
// silently clamped away.
func (s *SelectionStore) Export(lines []Line) string {
	sel := s.Clamp(len(lines))
	if sel == nil {
		return ""
	}

	var b strings.Builder
	for i := sel.Start; i <= sel.End; i++ {
		if i > sel.Start {
			b.WriteByte('\n')
		}
		b.WriteString(lines[i].Text)
	}
	return b.String()
}
