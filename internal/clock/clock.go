// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package clock abstracts wall-clock time and cancellable timers so that
// quiescence and debounce behavior can be tested deterministically with a
// fake clock instead of real sleeps.
package clock

import "time"

// Clock provides the current time and timer construction.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc schedules fn to run after d and returns a cancellable handle.
	// fn runs in its own goroutine on the real clock; the fake clock runs it
	// synchronously from Advance.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable timer handle.
type Timer interface {
	// Stop prevents the timer from firing. Returns false if the timer has
	// already fired or been stopped.
	Stop() bool

	// Reset reschedules the timer to fire after d from now.
	Reset(d time.Duration) bool
}

// New returns a Clock backed by the time package.
func New() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

type realTimer struct {
	t *time.Timer
}

func (rt realTimer) Stop() bool { return rt.t.Stop() }
func (rt realTimer) Reset(d time.Duration) bool { return rt.t.Reset(d) }
