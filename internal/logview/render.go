// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"fmt"
	"strings"
	"time"

	"github.com/warden-console/warden/internal/logstream"
)

// Level is the classified severity of a rendered line.
type Level string

const (
	LevelNone    Level = ""
	LevelIsWarn  Level = "warn"
	LevelIsError Level = "error"
)

// IssueClass marks lines that match a known-issue signature.
type IssueClass string

const (
	IssueNone   IssueClass = ""
	IssueWarn   IssueClass = "issueWarn"
	IssueDanger IssueClass = "issueDanger"
)

// Line is a rendered view line: text computed once per event and time mode,
// cached for the render pass.
type Line struct {
	// Text is the full rendered string, including any timestamp prefix.
	// This is the identity bookmarks capture.
	Text string

	// TextLower is Text lowercased once for case-insensitive matching.
	TextLower string

	// Level is the classified severity.
	Level Level

	// IssueClass marks known-issue lines for emphasis.
	IssueClass IssueClass

	// Spans are [start,end) byte ranges in Text where the active query
	// matched, for highlight rendering. Nil when the query is empty or
	// the line does not match.
	Spans [][2]int

	// SrcIdx is the position of the originating event in the buffer
	// snapshot the index was built from; -1 for the sentinel line.
	SrcIdx int

	// TSUnix is the originating event's timestamp, zero when unknown.
	TSUnix int64
}

// renderText builds the display string for an event under the given time
// mode. Events without a timestamp render bare; malformed events with an
// empty line render as an empty line.
func renderText(ev logstream.Event, mode TimeMode, ref time.Time) string {
	if ev.TSUnix == 0 {
		return ev.Line
	}

	switch mode {
	case TimeRelative:
		return "[" + relativeAge(ref.Unix()-ev.TSUnix) + "] " + ev.Line
	default:
		return "[" + time.Unix(ev.TSUnix, 0).Format("15:04:05") + "] " + ev.Line
	}
}

// relativeAge formats a positive age in seconds compactly: 12s, 3m05s, 2h03m.
// Future timestamps (clock skew) clamp to 0s.
func relativeAge(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	default:
		return fmt.Sprintf("%dh%02dm", seconds/3600, (seconds%3600)/60)
	}
}

// classifyLevel applies the fixed severity heuristics: error on
// ERROR/FATAL or a case-insensitive EXCEPTION/STACKTRACE mention, warn on
// WARN/WARNING.
func classifyLevel(line string) Level {
	if strings.Contains(line, "ERROR") || strings.Contains(line, "FATAL") {
		return LevelIsError
	}
	upper := strings.ToUpper(line)
	if strings.Contains(upper, "EXCEPTION") || strings.Contains(upper, "STACKTRACE") {
		return LevelIsError
	}
	if strings.Contains(line, "WARN") {
		return LevelIsWarn
	}
	return LevelNone
}
