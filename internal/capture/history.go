// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package capture

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/warden-console/warden/internal/storage"
)

const (
	// HistoryMaxPerInstance caps stored command history per instance.
	HistoryMaxPerInstance = 50

	historyKey = "cmdHistory"
)

// History persists console command history: one global key holding
// per-instance sub-lists, most recent first.
type History struct {
	kv storage.KeyValueStore
}

// NewHistory returns a History over the given persistence backend.
func NewHistory(kv storage.KeyValueStore) *History {
	return &History{kv: kv}
}

// Record prepends cmd to the instance's history. Consecutive repeats
// collapse to a single entry; the list is capped at HistoryMaxPerInstance.
func (h *History) Record(instance, cmd string) error {
	if cmd == "" {
		return nil
	}

	all, err := h.load()
	if err != nil {
		return err
	}

	list := all[instance]
	if len(list) > 0 && list[0] == cmd {
		return nil
	}
	list = append([]string{cmd}, list...)
	if len(list) > HistoryMaxPerInstance {
		list = list[:HistoryMaxPerInstance]
	}
	all[instance] = list

	return h.save(all)
}

// List returns the instance's command history, most recent first.
func (h *History) List(instance string) ([]string, error) {
	all, err := h.load()
	if err != nil {
		return nil, err
	}
	return all[instance], nil
}

func (h *History) load() (map[string][]string, error) {
	raw, err := h.kv.Get(historyKey)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load command history: %w", err)
	}

	var all map[string][]string
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode command history: %w", err)
	}
	if all == nil {
		all = map[string][]string{}
	}
	return all, nil
}

func (h *History) save(all map[string][]string) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode command history: %w", err)
	}
	if err := h.kv.Set(historyKey, string(data)); err != nil {
		return fmt.Errorf("save command history: %w", err)
	}
	return nil
}
