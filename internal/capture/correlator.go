// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logstream"
	"github.com/warden-console/warden/internal/metrics"
)

const (
	// QuiescenceWindow is the fixed delay after dispatch before a capture
	// finalizes, absent a superseding dispatch.
	QuiescenceWindow = 2800 * time.Millisecond

	// MaxCaptureLines is the rolling window of attributed lines per capture.
	MaxCaptureLines = 120

	// OutputRingSize caps retained finalized outputs, newest first.
	OutputRingSize = 12
)

// Dispatcher sends a console line to an instance through the agent.
// Fire-and-forget: success or failure is observed only via subsequent log
// lines or transport errors.
type Dispatcher interface {
	SendConsoleLine(ctx context.Context, instance, text string) error
}

// Output is an immutable finalized capture.
type Output struct {
	ID            string   `json:"id"`
	Cmd           string   `json:"cmd"`
	StartedAtUnix int64    `json:"startedAt"`
	Lines         []string `json:"lines"`
}

// active is the in-flight capture between dispatch and finalization.
type active struct {
	id         string
	instance   string
	cmd        string
	startedAt  int64
	nextLogIdx int
	lines      []string
	timer      clock.Timer
}

// Correlator runs the idle -> capturing -> idle state machine over a
// session buffer. Safe for concurrent use.
type Correlator struct {
	mu         sync.Mutex
	buffer     *logstream.Buffer
	clk        clock.Clock
	dispatcher Dispatcher
	current    *active
	outputs    []Output
	onFinalize func(instance string, out Output)

	unsubscribe func()
}

// NewCorrelator attaches a correlator to the buffer. The caller must Close
// it to detach.
func NewCorrelator(buffer *logstream.Buffer, dispatcher Dispatcher, clk clock.Clock) *Correlator {
	c := &Correlator{
		buffer:     buffer,
		clk:        clk,
		dispatcher: dispatcher,
	}
	c.unsubscribe = buffer.Subscribe(c.onAppend)
	return c
}

// SetOnFinalize registers a callback invoked whenever a capture finalizes.
// The callback runs on its own goroutine and may call back into the
// correlator. Set once during wiring, before any dispatch.
func (c *Correlator) SetOnFinalize(fn func(instance string, out Output)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFinalize = fn
}

// Close detaches from the buffer and finalizes any in-flight capture.
func (c *Correlator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalizeLocked()
}

// Dispatch sends the command to the instance and opens a capture for the
// lines it provokes. A dispatch while capturing finalizes the prior capture
// immediately and starts a fresh, independent one.
//
// The send itself is fire-and-forget; a transport error is returned but the
// capture still opens, since the command may have reached the process.
func (c *Correlator) Dispatch(ctx context.Context, instance, cmd string) (string, error) {
	sendErr := c.dispatcher.SendConsoleLine(ctx, instance, cmd)
	if sendErr != nil {
		sendErr = fmt.Errorf("dispatch %q to %s: %w", cmd, instance, sendErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.finalizeLocked()

	id := uuid.New().String()
	cur := &active{
		id:         id,
		instance:   instance,
		cmd:        cmd,
		startedAt:  c.clk.Now().Unix(),
		nextLogIdx: c.buffer.Len(),
	}
	cur.timer = c.clk.AfterFunc(QuiescenceWindow, func() {
		c.finalizeByID(id)
	})
	c.current = cur

	metrics.CommandsDispatched.WithLabelValues(instance).Inc()
	logger := logging.Ctx(ctx)
	logger.Debug().
		Str("instance", instance).
		Str("capture_id", id).
		Msg("console command dispatched")

	return id, sendErr
}

// onAppend scans newly appended buffer growth while capturing. The cursor
// only moves forward, so a slice is never attributed twice.
func (c *Correlator) onAppend(_ logstream.Event, newLen int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := c.current
	if cur == nil || newLen <= cur.nextLogIdx {
		return
	}

	for _, ev := range c.buffer.Slice(cur.nextLogIdx, newLen) {
		if ev.Source != logstream.SourceMC || ev.Instance != cur.instance {
			continue
		}
		cur.lines = append(cur.lines, ev.Line)
		if len(cur.lines) > MaxCaptureLines {
			cur.lines = cur.lines[len(cur.lines)-MaxCaptureLines:]
		}
	}
	cur.nextLogIdx = newLen
}

// finalizeByID finalizes the capture only if it is still the current one.
// Guards the timer race: a superseded capture's timer fires after its
// capture was already finalized by the next dispatch.
func (c *Correlator) finalizeByID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil || c.current.id != id {
		return
	}
	c.finalizeLocked()
}

// finalizeLocked moves the in-flight capture into the output ring.
func (c *Correlator) finalizeLocked() {
	cur := c.current
	if cur == nil {
		return
	}
	cur.timer.Stop()
	c.current = nil

	out := Output{
		ID:            cur.id,
		Cmd:           cur.cmd,
		StartedAtUnix: cur.startedAt,
		Lines:         cur.lines,
	}
	c.outputs = append([]Output{out}, c.outputs...)
	if len(c.outputs) > OutputRingSize {
		c.outputs = c.outputs[:OutputRingSize]
	}
	metrics.RecordCaptureFinalized(len(out.Lines))

	if c.onFinalize != nil {
		go c.onFinalize(cur.instance, out)
	}
}

// Capturing reports whether a capture is in flight.
func (c *Correlator) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Outputs returns the finalized outputs, newest first.
func (c *Correlator) Outputs() []Output {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Output, len(c.outputs))
	copy(out, c.outputs)
	return out
}

// Output returns a finalized output by capture id.
func (c *Correlator) Output(id string) (Output, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, out := range c.outputs {
		if out.ID == id {
			return out, true
		}
	}
	return Output{}, false
}
