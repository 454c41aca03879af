// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package bookmarks persists named references to log lines, independent of
// the live buffer's indices. A bookmark's identity is the full rendered
// line text at capture time; the line index is only a tie-break hint for
// re-location, so bookmarks survive watermark clears and buffer growth.
package bookmarks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/logview"
	"github.com/warden-console/warden/internal/storage"
)

const (
	// MaxPerInstance caps stored bookmarks, newest first.
	MaxPerInstance = 200

	// labelLimit truncates derived labels.
	labelLimit = 80

	keyPrefix = "bookmarks:"
)

// ErrNotFound is returned by JumpTo when no line in the current view
// matches the bookmark text. Non-fatal: callers surface a notice suggesting
// history search instead of an error banner.
var ErrNotFound = errors.New("bookmarks: line not in live buffer, try history search")

// Bookmark is a persisted reference to a rendered log line.
type Bookmark struct {
	ID            string `json:"id"`
	Instance      string `json:"instance"`
	View          string `json:"view"`
	Label         string `json:"label"`
	Text          string `json:"text"`
	CreatedAtUnix int64  `json:"createdAt"`
	LineIdxHint   int    `json:"lineIdxHint"`
}

// Store persists bookmarks per instance through a KeyValueStore.
type Store struct {
	kv  storage.KeyValueStore
	clk clock.Clock
}

// NewStore returns a Store over the given persistence backend.
func NewStore(kv storage.KeyValueStore, clk clock.Clock) *Store {
	return &Store{kv: kv, clk: clk}
}

// List returns the instance's bookmarks, newest first. An instance without
// saved bookmarks yields an empty list, not an error.
func (s *Store) List(instance string) ([]Bookmark, error) {
	raw, err := s.kv.Get(keyPrefix + instance)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load bookmarks: %w", err)
	}

	var list []Bookmark
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode bookmarks: %w", err)
	}
	return list, nil
}

// Toggle adds a bookmark for the line, or removes one when a bookmark with
// identical text already exists, the nearest by line index hint. Returns
// whether a bookmark was added.
func (s *Store) Toggle(instance, view string, lineIdx int, text string) (bool, error) {
	list, err := s.List(instance)
	if err != nil {
		return false, err
	}

	if at := nearestByText(list, text, lineIdx); at >= 0 {
		list = append(list[:at], list[at+1:]...)
		if err := s.save(instance, list); err != nil {
			return false, err
		}
		return false, nil
	}

	b := Bookmark{
		ID:            uuid.New().String(),
		Instance:      instance,
		View:          view,
		Label:         deriveLabel(text),
		Text:          text,
		CreatedAtUnix: s.clk.Now().Unix(),
		LineIdxHint:   lineIdx,
	}
	list = append([]Bookmark{b}, list...)
	if len(list) > MaxPerInstance {
		list = list[:MaxPerInstance]
	}

	if err := s.save(instance, list); err != nil {
		return false, err
	}
	return true, nil
}

// JumpTo re-locates the bookmark in the current filtered lines by exact
// text match, breaking ties by nearest LineIdxHint. Returns the line index,
// or ErrNotFound when the line is no longer in the live view.
func (s *Store) JumpTo(b Bookmark, lines []logview.Line) (int, error) {
	best := -1
	bestDist := int(^uint(0) >> 1)

	for i, line := range lines {
		if line.Text != b.Text {
			continue
		}
		dist := abs(i - b.LineIdxHint)
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}

	if best < 0 {
		return -1, ErrNotFound
	}
	return best, nil
}

func (s *Store) save(instance string, list []Bookmark) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := s.kv.Set(keyPrefix+instance, string(data)); err != nil {
		return fmt.Errorf("save bookmarks: %w", err)
	}
	return nil
}

// nearestByText returns the list position of the bookmark with identical
// text closest to lineIdx by hint, -1 when none matches.
func nearestByText(list []Bookmark, text string, lineIdx int) int {
	best := -1
	bestDist := int(^uint(0) >> 1)

	for i, b := range list {
		if b.Text != text {
			continue
		}
		dist := abs(b.LineIdxHint - lineIdx)
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}

// deriveLabel produces a short label from the line text: the content after
// the last ": " separator, truncated.
func deriveLabel(text string) string {
	label := text
	if at := strings.LastIndex(text, ": "); at >= 0 && at+2 < len(text) {
		label = text[at+2:]
	}
	if len(label) > labelLimit {
		label = label[:labelLimit]
	}
	return label
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
