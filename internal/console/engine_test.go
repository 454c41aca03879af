// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package console

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/warden-console/warden/internal/capture"
	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/history"
	"github.com/warden-console/warden/internal/logstream"
	"github.com/warden-console/warden/internal/storage"
)

// fakeDispatcher records console lines and answers history searches.
type fakeDispatcher struct {
	sent    []string
	sendErr error
	resp    *history.Response
}

func (f *fakeDispatcher) SendConsoleLine(_ context.Context, instance, text string) error {
	f.sent = append(f.sent, instance+":"+text)
	return f.sendErr
}

func (f *fakeDispatcher) SearchHistory(context.Context, history.Request) (*history.Response, error) {
	if f.resp == nil {
		return &history.Response{}, nil
	}
	return f.resp, nil
}

// recordingNotifier collects broadcasts. Capture finalization notifies from
// its own goroutine, so that list is mutex-guarded.
type recordingNotifier struct {
	events      []logstream.Event
	invalidated []string

	mu       sync.Mutex
	captures []string
}

func (r *recordingNotifier) BroadcastLogEvent(ev logstream.Event) { r.events = append(r.events, ev) }
func (r *recordingNotifier) BroadcastViewInvalidate(instance string) {
	r.invalidated = append(r.invalidated, instance)
}

func (r *recordingNotifier) BroadcastCaptureOutput(instance, id, cmd string, lines []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captures = append(r.captures, instance+":"+cmd)
}

func (r *recordingNotifier) capturedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.captures)
}

func newTestEngine(t *testing.T, opts Options) (*Engine, *fakeDispatcher, *recordingNotifier, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(time.Unix(5000, 0))
	disp := &fakeDispatcher{}
	notif := &recordingNotifier{}
	if opts.Notifier == nil {
		opts.Notifier = notif
	}
	e := NewEngine(disp, storage.NewMemoryStore(), fake, opts)
	t.Cleanup(e.Close)
	return e, disp, notif, fake
}

func mcLine(instance, line string, ts int64) logstream.Event {
	return logstream.Event{
		Source:   logstream.SourceMC,
		Instance: instance,
		Stream:   logstream.StreamStdout,
		TSUnix:   ts,
		Line:     line,
	}
}

func TestFeed_AppendsAndNotifies(t *testing.T) {
	e, _, notif, _ := newTestEngine(t, Options{})

	ev := mcLine("vanilla", "[Server thread/INFO]: Done (3.2s)!", 5000)
	e.Feed(ev)

	if e.Buffer.Len() != 1 {
		t.Errorf("buffer length = %d, want 1", e.Buffer.Len())
	}
	if len(notif.events) != 1 || notif.events[0] != ev {
		t.Errorf("notifier events = %+v, want the fed event", notif.events)
	}
}

func TestDispatch_OpensCaptureAndRecordsHistory(t *testing.T) {
	e, disp, _, fake := newTestEngine(t, Options{})

	id, err := e.Dispatch(context.Background(), "vanilla", "list")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if id == "" {
		t.Fatal("Dispatch() returned empty capture id")
	}
	if len(disp.sent) != 1 || disp.sent[0] != "vanilla:list" {
		t.Errorf("sent = %v, want [vanilla:list]", disp.sent)
	}
	if !e.Captures.Capturing() {
		t.Error("no capture in flight after dispatch")
	}

	cmds, err := e.CmdHistory.List("vanilla")
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || cmds[0] != "list" {
		t.Errorf("command history = %v, want [list]", cmds)
	}

	// Provoked output is attributed until quiescence closes the capture.
	e.Feed(mcLine("vanilla", "There are 3 of a max of 20 players online", 5001))
	fake.Advance(capture.QuiescenceWindow)

	outs := e.Captures.Outputs()
	if len(outs) != 1 || outs[0].ID != id {
		t.Fatalf("outputs = %+v, want the finalized capture", outs)
	}
	if len(outs[0].Lines) != 1 {
		t.Errorf("captured lines = %v, want one", outs[0].Lines)
	}
}

func TestCaptureFinalize_BroadcastsOutput(t *testing.T) {
	e, _, notif, fake := newTestEngine(t, Options{})

	if _, err := e.Dispatch(context.Background(), "vanilla", "tps"); err != nil {
		t.Fatal(err)
	}
	fake.Advance(capture.QuiescenceWindow)

	// The broadcast runs on its own goroutine.
	deadline := time.After(2 * time.Second)
	for notif.capturedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("finalized capture was never broadcast")
		case <-time.After(5 * time.Millisecond):
		}
	}

	notif.mu.Lock()
	got := notif.captures[0]
	notif.mu.Unlock()
	if got != "vanilla:tps" {
		t.Errorf("broadcast = %q, want %q", got, "vanilla:tps")
	}
}

func TestDispatch_RateLimited(t *testing.T) {
	e, disp, _, _ := newTestEngine(t, Options{DispatchPerSecond: 0.001, DispatchBurst: 2})

	ctx := context.Background()
	if _, err := e.Dispatch(ctx, "vanilla", "list"); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	if _, err := e.Dispatch(ctx, "vanilla", "tps"); err != nil {
		t.Fatalf("second dispatch: %v", err)
	}

	_, err := e.Dispatch(ctx, "vanilla", "seed")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("third dispatch error = %v, want ErrRateLimited", err)
	}
	if len(disp.sent) != 2 {
		t.Errorf("sent %d commands, want 2 (rejected dispatch must not send)", len(disp.sent))
	}

	// Limits are per instance: another instance still has its burst.
	if _, err := e.Dispatch(ctx, "creative", "list"); err != nil {
		t.Errorf("other instance dispatch: %v", err)
	}
}

func TestDispatch_SendErrorStillCaptures(t *testing.T) {
	e, disp, _, _ := newTestEngine(t, Options{})
	disp.sendErr = errors.New("agent gone")

	id, err := e.Dispatch(context.Background(), "vanilla", "list")
	if err == nil {
		t.Fatal("Dispatch() = nil error, want transport error surfaced")
	}
	if id == "" {
		t.Error("capture id empty; capture should open despite the send error")
	}
	if !e.Captures.Capturing() {
		t.Error("no capture in flight after failed send")
	}
}

func TestLatestTPS(t *testing.T) {
	e, _, _, fake := newTestEngine(t, Options{})

	if _, ok := e.LatestTPS(); ok {
		t.Error("LatestTPS() = ok with no captures")
	}

	if _, err := e.Dispatch(context.Background(), "vanilla", "tps"); err != nil {
		t.Fatal(err)
	}
	e.Feed(mcLine("vanilla", "TPS from last 5 minutes: 19.98, 20.0, 18.5", 5001))
	fake.Advance(capture.QuiescenceWindow)

	tps, ok := e.LatestTPS()
	if !ok {
		t.Fatal("LatestTPS() not found after tps capture")
	}
	if tps != [3]float64{19.98, 20.0, 18.5} {
		t.Errorf("tps = %v, want [19.98 20 18.5]", tps)
	}
}

func TestPauseResumeClearNotify(t *testing.T) {
	e, _, notif, _ := newTestEngine(t, Options{})

	e.Pause()
	if !e.Buffer.Paused() {
		t.Error("buffer not paused after Pause()")
	}
	e.Resume()
	if e.Buffer.Paused() {
		t.Error("buffer still paused after Resume()")
	}
	e.ClearView()

	if len(notif.invalidated) != 2 {
		t.Errorf("invalidations = %v, want 2 (resume + clear)", notif.invalidated)
	}
}
