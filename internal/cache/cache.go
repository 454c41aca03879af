// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/warden-console/warden/internal/clock"
)

// Fetcher produces the value for a key on miss or revalidation.
type Fetcher func(ctx context.Context) (any, error)

// Config tunes one cache instance. Zero durations fall back to defaults.
type Config struct {
	// FreshFor is how long a fetched value is served without question.
	// Default: 10s.
	FreshFor time.Duration

	// StaleFor is how long past freshness a value may still be served
	// while a background fetch revalidates it. Default: 1m.
	StaleFor time.Duration

	// FetchTimeout bounds background revalidation fetches. Default: 15s.
	FetchTimeout time.Duration

	// Clock is injected for tests; nil uses the wall clock.
	Clock clock.Clock
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Stale     int64
	Evictions int64
	Keys      int
}

// entry is one cached value plus its in-flight fetch, if any.
type entry struct {
	value     any
	hasValue  bool
	fetchedAt time.Time
	inflight  *flight
}

// flight is a single shared fetch; waiters block on done.
type flight struct {
	done chan struct{}
	val  any
	err  error
}

// Cache is a thread-safe stale-while-revalidate cache keyed by string.
type Cache struct {
	freshFor     time.Duration
	staleFor     time.Duration
	fetchTimeout time.Duration
	clk          clock.Clock

	mu      sync.Mutex
	entries map[string]*entry

	hits      atomic.Int64
	misses    atomic.Int64
	stale     atomic.Int64
	evictions atomic.Int64
}

// New creates a cache. No background goroutines: expired entries are
// pruned opportunistically on writes and by Purge.
func New(cfg Config) *Cache {
	if cfg.FreshFor == 0 {
		cfg.FreshFor = 10 * time.Second
	}
	if cfg.StaleFor == 0 {
		cfg.StaleFor = time.Minute
	}
	if cfg.FetchTimeout == 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	return &Cache{
		freshFor:     cfg.FreshFor,
		staleFor:     cfg.StaleFor,
		fetchTimeout: cfg.FetchTimeout,
		clk:          cfg.Clock,
		entries:      make(map[string]*entry),
	}
}

// GetOrFetch returns the cached value for key, fetching or revalidating as
// its age requires. Concurrent callers on a cold key share one fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entries[key]
	now := c.clk.Now()

	if e != nil && e.hasValue {
		age := now.Sub(e.fetchedAt)

		if age < c.freshFor {
			v := e.value
			c.mu.Unlock()
			c.hits.Add(1)
			return v, nil
		}

		if age < c.freshFor+c.staleFor {
			v := e.value
			if e.inflight == nil {
				f := &flight{done: make(chan struct{})}
				e.inflight = f
				go c.revalidate(key, f, fetch)
			}
			c.mu.Unlock()
			c.stale.Add(1)
			return v, nil
		}
	}

	// Cold or expired. Join an in-flight fetch if one is running.
	if e != nil && e.inflight != nil {
		f := e.inflight
		c.mu.Unlock()
		c.misses.Add(1)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.done:
			return f.val, f.err
		}
	}

	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	f := &flight{done: make(chan struct{})}
	e.inflight = f
	c.mu.Unlock()
	c.misses.Add(1)

	val, err := fetch(ctx)
	c.settle(key, f, val, err)
	return val, err
}

// Get returns the cached value without fetching. Stale values within the
// serve window still count as present.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key]
	if e == nil || !e.hasValue {
		return nil, false
	}
	if c.clk.Now().Sub(e.fetchedAt) >= c.freshFor+c.staleFor {
		return nil, false
	}
	return e.value, true
}

// Set stores a value directly, marking it fresh as of now.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[key]
	if e == nil {
		e = &entry{}
		c.entries[key] = e
	}
	e.value = value
	e.hasValue = true
	e.fetchedAt = c.clk.Now()
}

// Delete removes one entry. An in-flight fetch for the key still completes
// and repopulates it.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.inflight == nil {
		delete(c.entries, key)
		c.evictions.Add(1)
	} else if ok {
		e.hasValue = false
		e.value = nil
	}
	c.mu.Unlock()
}

// Clear drops every settled entry. In-flight fetches repopulate their keys
// when they land.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := int64(len(c.entries))
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	c.evictions.Add(n)
}

// Purge removes entries past the stale window. Called from the maintenance
// loop; safe to skip entirely for small key sets.
func (c *Cache) Purge() {
	cutoff := c.clk.Now().Add(-(c.freshFor + c.staleFor))
	c.mu.Lock()
	for key, e := range c.entries {
		if e.inflight == nil && e.fetchedAt.Before(cutoff) {
			delete(c.entries, key)
			c.evictions.Add(1)
		}
	}
	c.mu.Unlock()
}

// GetStats returns a snapshot of the counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	keys := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Stale:     c.stale.Load(),
		Evictions: c.evictions.Load(),
		Keys:      keys,
	}
}

// HitRate returns the hit percentage. Stale serves count as hits: the
// caller got an immediate answer.
func (c *Cache) HitRate() float64 {
	s := c.GetStats()
	total := s.Hits + s.Stale + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits+s.Stale) / float64(total) * 100.0
}

// revalidate runs a background fetch for a stale entry.
func (c *Cache) revalidate(key string, f *flight, fetch Fetcher) {
	ctx, cancel := context.WithTimeout(context.Background(), c.fetchTimeout)
	defer cancel()

	val, err := fetch(ctx)
	c.settle(key, f, val, err)
}

// settle records a fetch outcome and releases the waiters. A failed fetch
// leaves the previous value in place.
func (c *Cache) settle(key string, f *flight, val any, err error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.inflight == f {
		e.inflight = nil
		if err == nil {
			e.value = val
			e.hasValue = true
			e.fetchedAt = c.clk.Now()
		}
	}
	c.mu.Unlock()

	f.val, f.err = val, err
	close(f.done)
}

// GenerateKey builds a cache key from a method name and its parameters.
func GenerateKey(method string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
