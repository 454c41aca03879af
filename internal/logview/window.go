// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

// NearBottomPx is the remaining scroll distance under which follow-to-bottom
// may engage.
const NearBottomPx = 64

// Viewport is the computed visible slice of a filtered line list.
//
// Invariant: TopPad + (End-Start)*lineHeight + BottomPad == total*lineHeight
// in fixed-height mode.
type Viewport struct {
	// Start and End bound the visible slice: lines [Start, End).
	Start int
	End   int

	// TopPad and BottomPad are the pixel heights of the virtualized space
	// above and below the visible slice.
	TopPad    int
	BottomPad int
}

// Window computes the visible slice for fixed line heights ("no-wrap" mode).
// Overscan lines are added on both sides of the viewport so scrolling does
// not reveal blank space before the next render.
func Window(total, scrollTop, viewportHeight, lineHeight, overscan int) Viewport {
	if total <= 0 || lineHeight <= 0 {
		return Viewport{}
	}
	if scrollTop < 0 {
		scrollTop = 0
	}
	if viewportHeight < 0 {
		viewportHeight = 0
	}
	if overscan < 0 {
		overscan = 0
	}

	start := scrollTop/lineHeight - overscan
	if start < 0 {
		start = 0
	}

	visible := ceilDiv(viewportHeight, lineHeight) + 2*overscan
	end := start + visible
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	return Viewport{
		Start:     start,
		End:       end,
		TopPad:    start * lineHeight,
		BottomPad: (total - end) * lineHeight,
	}
}

// WrapWindow computes the "wrap" mode viewport: variable line heights make
// fixed-offset virtualization unreliable, so the full (render-capped) list
// is returned with no padding.
func WrapWindow(total int) Viewport {
	if total < 0 {
		total = 0
	}
	return Viewport{Start: 0, End: total}
}

// NearBottom reports whether the scroll position is within NearBottomPx of
// the end of the content. Follow-to-bottom only engages from here.
func NearBottom(scrollTop, viewportHeight, totalHeight int) bool {
	remaining := totalHeight - (scrollTop + viewportHeight)
	return remaining <= NearBottomPx
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
