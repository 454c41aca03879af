// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logstream

import "sync"

// AppendFunc observes buffer growth. It receives the appended event and the
// buffer length after the append. Callbacks run synchronously on the
// appending goroutine, in subscription order.
type AppendFunc func(ev Event, newLen int)

// Buffer is the append-only, per-session store of all events received so
// far. It accepts every well-formed event in O(1) amortized time and never
// reorders within a (source, instance) pair.
//
// Buffer is safe for concurrent use. The engine's state transitions stay
// atomic per caller, which preserves the single-threaded event-loop
// semantics the derivation pipeline expects.
type Buffer struct {
	mu        sync.RWMutex
	events    []Event
	paused    bool
	frozenLen int // snapshot boundary while paused
	watermark int64
	subs      map[uint64]AppendFunc
	nextSubID uint64
}

// NewBuffer returns an empty Buffer. The watermark starts below zero so
// events without a timestamp are visible until the first clear.
func NewBuffer() *Buffer {
	return &Buffer{watermark: -1, subs: make(map[uint64]AppendFunc)}
}

// Append adds an event to the buffer and notifies subscribers. It never
// rejects events; ingestion continues while the view is paused.
func (b *Buffer) Append(ev Event) {
	b.mu.Lock()
	b.events = append(b.events, ev)
	newLen := len(b.events)

	// Copy the callback set so a subscriber can unsubscribe from within
	// its own callback without deadlocking.
	callbacks := make([]AppendFunc, 0, len(b.subs))
	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sortIDs(ids)
	for _, id := range ids {
		callbacks = append(callbacks, b.subs[id])
	}
	b.mu.Unlock()

	for _, fn := range callbacks {
		fn(ev, newLen)
	}
}

// Len returns the total number of events received, including any hidden by
// the watermark and any received while paused. Monotonically non-decreasing.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// Snapshot returns the events visible to derived views: the full live
// sequence, or the frozen prefix while paused. The returned slice is an
// immutable view; the buffer never mutates prior elements.
func (b *Buffer) Snapshot() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.events)
	if b.paused {
		n = b.frozenLen
	}
	return b.events[:n:n]
}

// All returns every event received so far regardless of pause state.
// Bookmarks and command capture read through this, not Snapshot, so the
// paused view never hides causally attributed lines from them.
func (b *Buffer) All() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.events)
	return b.events[:n:n]
}

// Slice returns events in [from, to), clamped to the buffer bounds.
func (b *Buffer) Slice(from, to int) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.events)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return nil
	}
	return b.events[from:to:to]
}

// Pause freezes the derived view at the current buffer length. Ingestion
// continues. Pausing an already paused buffer is a no-op and keeps the
// original snapshot boundary.
func (b *Buffer) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.paused {
		return
	}
	b.paused = true
	b.frozenLen = len(b.events)
}

// Resume discards the snapshot and returns derived views to the live buffer.
func (b *Buffer) Resume() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paused = false
	b.frozenLen = 0
}

// Paused reports whether the view is frozen.
func (b *Buffer) Paused() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.paused
}

// PendingWhilePaused returns how many events arrived since Pause, for the
// "N new logs" affordance. Zero when not paused.
func (b *Buffer) PendingWhilePaused() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.paused {
		return 0
	}
	return len(b.events) - b.frozenLen
}

// SetWatermark hides events with TSUnix <= ts from filtered views without
// deleting them ("clear view"). Bookmarks and history search are unaffected.
func (b *Buffer) SetWatermark(ts int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watermark = ts
}

// Watermark returns the current cutoff, negative when no clear has
// happened.
func (b *Buffer) Watermark() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.watermark
}

// Subscribe registers an observer of buffer growth and returns an
// unsubscribe function. Safe to call the unsubscribe from within the
// callback itself.
func (b *Buffer) Subscribe(fn AppendFunc) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// sortIDs keeps callback invocation in subscription order without pulling
// in sort for a tiny fixed-size insertion.
func sortIDs(ids []uint64) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
