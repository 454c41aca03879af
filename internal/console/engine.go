// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/warden-console/warden/internal/bookmarks"
	"github.com/warden-console/warden/internal/capture"
	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/history"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logstream"
	"github.com/warden-console/warden/internal/logview"
	"github.com/warden-console/warden/internal/metrics"
	"github.com/warden-console/warden/internal/storage"
)

// ErrRateLimited reports a dispatch rejected by the per-instance limiter.
var ErrRateLimited = errors.New("console: dispatch rate limit exceeded")

// Notifier mirrors engine activity to connected operator UIs. Implemented
// by the websocket hub; nil-safe via the noop used in tests.
type Notifier interface {
	BroadcastLogEvent(ev logstream.Event)
	BroadcastCaptureOutput(instance, id, cmd string, lines []string)
	BroadcastViewInvalidate(instance string)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastLogEvent(logstream.Event)                       {}
func (noopNotifier) BroadcastCaptureOutput(string, string, string, []string) {}
func (noopNotifier) BroadcastViewInvalidate(string)                          {}

// Options tunes the engine.
type Options struct {
	// DispatchPerSecond and DispatchBurst bound console command dispatch
	// per instance. Zero values fall back to 5/s with a burst of 10.
	DispatchPerSecond float64
	DispatchBurst     int

	// Notifier receives pushed events and invalidations; nil disables.
	Notifier Notifier
}

// Engine owns the live log stream state for the console process.
type Engine struct {
	Buffer     *logstream.Buffer
	View       *logview.View
	Captures   *capture.Correlator
	CmdHistory *capture.History
	Bookmarks  *bookmarks.Store
	Search     *history.Facade

	notifier      Notifier
	dispatchRate  rate.Limit
	dispatchBurst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewEngine wires the engine. dispatcher is the agent link used both for
// console commands and remote history search; kv persists bookmarks and
// command history.
func NewEngine(dispatcher Dispatcher, kv storage.KeyValueStore, clk clock.Clock, opts Options) *Engine {
	if opts.DispatchPerSecond <= 0 {
		opts.DispatchPerSecond = 5
	}
	if opts.DispatchBurst <= 0 {
		opts.DispatchBurst = 10
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}

	buffer := logstream.NewBuffer()
	e := &Engine{
		Buffer:        buffer,
		View:          logview.NewView(buffer, "", clk),
		Captures:      capture.NewCorrelator(buffer, dispatcher, clk),
		CmdHistory:    capture.NewHistory(kv),
		Bookmarks:     bookmarks.NewStore(kv, clk),
		Search:        history.NewFacade(dispatcher),
		notifier:      opts.Notifier,
		dispatchRate:  rate.Limit(opts.DispatchPerSecond),
		dispatchBurst: opts.DispatchBurst,
		limiters:      make(map[string]*rate.Limiter),
	}
	e.Captures.SetOnFinalize(func(instance string, out capture.Output) {
		e.notifier.BroadcastCaptureOutput(instance, out.ID, out.Cmd, out.Lines)
	})
	return e
}

// Dispatcher joins the two agent capabilities the engine needs.
type Dispatcher interface {
	capture.Dispatcher
	history.Searcher
}

// Feed ingests one pushed log event. This is the only append path; the
// buffer fan-out wakes the view and any in-flight capture.
func (e *Engine) Feed(ev logstream.Event) {
	e.Buffer.Append(ev)
	metrics.LogEventsIngested.WithLabelValues(string(ev.Source)).Inc()
	metrics.LogBufferLength.WithLabelValues("all").Set(float64(e.Buffer.Len()))
	e.notifier.BroadcastLogEvent(ev)
}

// Dispatch sends a console command to an instance, recording it in command
// history and opening an output capture. Rejected without side effects when
// the instance's rate limit is exhausted.
func (e *Engine) Dispatch(ctx context.Context, instance, cmd string) (string, error) {
	if !e.limiterFor(instance).Allow() {
		metrics.APIRateLimitHits.WithLabelValues("dispatch").Inc()
		return "", fmt.Errorf("%w: instance %s", ErrRateLimited, instance)
	}

	if err := e.CmdHistory.Record(instance, cmd); err != nil {
		// History is a convenience; dispatch still proceeds.
		logging.Warn().Err(err).Str("instance", instance).Msg("failed to record command history")
	}

	return e.Captures.Dispatch(ctx, instance, cmd)
}

// Pause freezes the view and mirrors the state to UIs.
func (e *Engine) Pause() {
	e.View.Pause()
	metrics.LogViewPaused.WithLabelValues("all").Set(1)
}

// Resume unfreezes the view.
func (e *Engine) Resume() {
	e.View.Resume()
	metrics.LogViewPaused.WithLabelValues("all").Set(0)
	e.notifier.BroadcastViewInvalidate(e.View.Spec().Instance)
}

// ClearView raises the watermark and tells UIs to refetch.
func (e *Engine) ClearView() {
	e.View.ClearView()
	e.notifier.BroadcastViewInvalidate(e.View.Spec().Instance)
}

// LatestTPS scans recent finalized captures for the newest parsable TPS
// report.
func (e *Engine) LatestTPS() ([3]float64, bool) {
	for _, out := range e.Captures.Outputs() {
		if tps, ok := capture.ParseTPS(out); ok {
			return tps, true
		}
	}
	return [3]float64{}, false
}

// Close releases buffer subscriptions.
func (e *Engine) Close() {
	e.Captures.Close()
	e.View.Close()
}

func (e *Engine) limiterFor(instance string) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.limiters[instance]
	if !ok {
		l = rate.NewLimiter(e.dispatchRate, e.dispatchBurst)
		e.limiters[instance] = l
	}
	return l
}
