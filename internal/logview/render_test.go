// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"testing"
	"time"

	"github.com/warden-console/warden/internal/logstream"
)

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		line string
		want Level
	}{
		{"[Server] ERROR something broke", LevelIsError},
		{"FATAL: cannot start", LevelIsError},
		{"java.lang.NullPointerException at foo", LevelIsError},
		{"printing StackTrace below", LevelIsError},
		{"[Server] WARN lag spike", LevelIsWarn},
		{"WARNING: deprecated flag", LevelIsWarn},
		{"[Server] INFO all good", LevelNone},
		{"", LevelNone},
		// Lowercase "error" alone is not classified; only the exception
		// heuristics are case-insensitive.
		{"an error occurred", LevelNone},
	}

	for _, tt := range tests {
		if got := classifyLevel(tt.line); got != tt.want {
			t.Errorf("classifyLevel(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestRenderText_NoTimestamp(t *testing.T) {
	ev := logstream.Event{Source: logstream.SourceMC, Line: "bare line"}
	if got := renderText(ev, TimeLocal, time.Unix(5000, 0)); got != "bare line" {
		t.Errorf("events without ts render bare, got %q", got)
	}
}

func TestRenderText_RelativeMode(t *testing.T) {
	ref := time.Unix(5000, 0)
	ev := logstream.Event{Source: logstream.SourceMC, TSUnix: 4800, Line: "x"}

	if got := renderText(ev, TimeRelative, ref); got != "[3m20s] x" {
		t.Errorf("expected [3m20s] prefix, got %q", got)
	}
}

func TestRelativeAge(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{-5, "0s"},
		{0, "0s"},
		{45, "45s"},
		{60, "1m00s"},
		{185, "3m05s"},
		{3600, "1h00m"},
		{7380, "2h03m"},
	}

	for _, tt := range tests {
		if got := relativeAge(tt.seconds); got != tt.want {
			t.Errorf("relativeAge(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
