// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"testing"
	"time"

	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/logstream"
)

func newTestView(t *testing.T) (*View, *logstream.Buffer, *clock.Fake) {
	t.Helper()
	buf := logstream.NewBuffer()
	fc := clock.NewFake(time.Unix(5000, 0))
	v := NewView(buf, "s1", fc)
	t.Cleanup(v.Close)
	return v, buf, fc
}

func feed(buf *logstream.Buffer, lines ...string) {
	for i, line := range lines {
		buf.Append(logstream.Event{
			Source: logstream.SourceMC, Instance: "s1",
			TSUnix: int64(1000 + i), Line: line,
		})
	}
}

func TestView_QueryDebounceCommitsOnce(t *testing.T) {
	v, buf, fc := newTestView(t)
	feed(buf, "alpha", "beta", "alphabet")

	// Simulated typing: only the final query should ever commit.
	v.SetQuery("a", false)
	fc.Advance(50 * time.Millisecond)
	v.SetQuery("al", false)
	fc.Advance(50 * time.Millisecond)
	v.SetQuery("alpha", false)

	if got := v.Spec().Query; got != "" {
		t.Fatalf("query committed before debounce elapsed: %q", got)
	}

	fc.Advance(DebounceInterval)
	if got := v.Spec().Query; got != "alpha" {
		t.Fatalf("expected committed query alpha, got %q", got)
	}

	idx := v.Index()
	if len(idx.Matches) != 2 {
		t.Errorf("expected matches on alpha and alphabet, got %v", idx.Matches)
	}
}

func TestView_InvalidRegexKeepsLastGoodView(t *testing.T) {
	v, buf, fc := newTestView(t)
	feed(buf, "one", "two", "three")

	v.SetQuery("t", false)
	fc.Advance(DebounceInterval)
	good := v.Index()
	if len(good.Matches) != 2 {
		t.Fatalf("setup: expected 2 matches, got %v", good.Matches)
	}

	v.SetQuery("([", true)
	fc.Advance(DebounceInterval)

	if v.QueryError() == "" {
		t.Error("expected a regex error indicator")
	}
	after := v.Index()
	if len(after.Lines) != len(good.Lines) || len(after.Matches) != 2 {
		t.Error("invalid regex must not discard the previous valid view")
	}

	// Recovering with a valid query clears the error.
	v.SetQuery("one", false)
	fc.Advance(DebounceInterval)
	if v.QueryError() != "" {
		t.Errorf("expected error cleared, got %q", v.QueryError())
	}
	if got := v.Index(); len(got.Matches) != 1 {
		t.Errorf("expected 1 match after recovery, got %v", got.Matches)
	}
}

func TestView_NavigationDisengagesFollow(t *testing.T) {
	v, buf, fc := newTestView(t)
	feed(buf, "hit", "miss", "hit")

	if !v.Follow() {
		t.Fatal("view starts pinned to live")
	}

	v.SetQuery("hit", false)
	fc.Advance(DebounceInterval)

	if pos := v.NextMatch(); pos != 2 {
		t.Errorf("expected navigation to line 2, got %d", pos)
	}
	if v.Follow() {
		t.Error("manual navigation must turn follow off")
	}
}

func TestView_ObserveScrollReengagesFollowNearBottom(t *testing.T) {
	v, buf, _ := newTestView(t)
	feed(buf, "a", "b", "c")

	v.ObserveScroll(0, 400, 10000)
	if v.Follow() {
		t.Error("scrolled away from bottom must not follow")
	}

	v.ObserveScroll(9600, 400, 10000)
	if !v.Follow() {
		t.Error("near bottom should re-engage follow")
	}

	// Never while paused.
	v.Pause()
	v.ObserveScroll(9600, 400, 10000)
	if v.Follow() {
		t.Error("paused view must not follow")
	}
}

func TestView_PauseFreezesIndexResumeCatchesUp(t *testing.T) {
	v, buf, _ := newTestView(t)
	feed(buf, "a", "b")

	v.Pause()
	feed(buf, "c", "d", "e")

	if got := len(v.Index().Lines); got != 2 {
		t.Errorf("paused view should show 2 lines, got %d", got)
	}
	if got := buf.PendingWhilePaused(); got != 3 {
		t.Errorf("expected 3 pending lines, got %d", got)
	}

	v.Resume()
	if got := len(v.Index().Lines); got != 5 {
		t.Errorf("resumed view should show 5 lines, got %d", got)
	}
}

func TestView_ClearViewHidesExistingKeepsBuffer(t *testing.T) {
	v, buf, _ := newTestView(t)
	feed(buf, "old-1", "old-2")

	v.ClearView()
	if got := len(v.Index().Lines); got != 0 {
		t.Errorf("cleared view should be empty, got %d lines", got)
	}
	if buf.Len() != 2 {
		t.Error("clear view must not delete events")
	}

	// New events (timestamped after the cutoff) surface again.
	buf.Append(logstream.Event{
		Source: logstream.SourceMC, Instance: "s1",
		TSUnix: v.clk.Now().Unix() + 1, Line: "fresh",
	})
	if got := len(v.Index().Lines); got != 1 {
		t.Errorf("post-clear event should be visible, got %d lines", got)
	}
}

func TestView_ScopeChangeResetsPointer(t *testing.T) {
	v, buf, fc := newTestView(t)
	feed(buf, "hit one", "hit two")
	buf.Append(logstream.Event{Source: logstream.SourceInstall, Instance: "s1", TSUnix: 2000, Line: "hit install"})

	v.SetQuery("hit", false)
	fc.Advance(DebounceInterval)
	v.NextMatch()
	if p, _ := v.MatchState(); p != 1 {
		t.Fatalf("setup: expected pointer 1, got %d", p)
	}

	v.SetScope(ScopeInstall)
	if p, total := v.MatchState(); p != 0 || total != 1 {
		t.Errorf("scope change must rewind pointer, got pointer=%d total=%d", p, total)
	}
}

func TestView_SelectionExport(t *testing.T) {
	v, buf, _ := newTestView(t)
	feed(buf, "first", "second", "third")

	v.Click(0)
	v.ShiftClick(1)

	got := v.ExportSelection()
	want := v.Index().Lines[0].Text + "\n" + v.Index().Lines[1].Text
	if got != want {
		t.Errorf("export = %q, want %q", got, want)
	}
}
