// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

// Navigator walks the ordered match positions of an Index with wraparound.
// The pointer is always within [-1, len-1]; -1 means no matches.
//
// Navigator is a plain value type owned by View; it carries no locking of
// its own.
type Navigator struct {
	positions []int
	pointer   int
}

// SetMatches replaces the match positions, clamping the current pointer
// into the new range. Used when the filtered list is recomputed without a
// query/scope/instance change.
func (n *Navigator) SetMatches(positions []int) {
	n.positions = positions
	if len(positions) == 0 {
		n.pointer = -1
		return
	}
	if n.pointer < 0 {
		n.pointer = 0
	}
	if n.pointer > len(positions)-1 {
		n.pointer = len(positions) - 1
	}
}

// Reset replaces the match positions and rewinds the pointer to the first
// match. Used when query, scope, or instance changes.
func (n *Navigator) Reset(positions []int) {
	n.positions = positions
	if len(positions) == 0 {
		n.pointer = -1
		return
	}
	n.pointer = 0
}

// Len returns the number of matches.
func (n *Navigator) Len() int { return len(n.positions) }

// Pointer returns the current match ordinal, -1 when there are no matches.
func (n *Navigator) Pointer() int { return n.pointer }

// Current returns the line position of the current match, -1 when there are
// no matches.
func (n *Navigator) Current() int {
	if n.pointer < 0 || n.pointer >= len(n.positions) {
		return -1
	}
	return n.positions[n.pointer]
}

// Next advances to the following match, wrapping at the end, and returns
// its line position. Returns -1 when there are no matches.
func (n *Navigator) Next() int {
	if len(n.positions) == 0 {
		return -1
	}
	n.pointer = (n.pointer + 1) % len(n.positions)
	return n.positions[n.pointer]
}

// Prev steps back to the preceding match, wrapping at the start, and
// returns its line position. Returns -1 when there are no matches.
func (n *Navigator) Prev() int {
	if len(n.positions) == 0 {
		return -1
	}
	n.pointer--
	if n.pointer < 0 {
		n.pointer = len(n.positions) - 1
	}
	return n.positions[n.pointer]
}
