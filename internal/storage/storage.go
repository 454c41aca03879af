// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package storage provides the persistent key-value abstraction used for
// bookmarks and command history. The engine only depends on KeyValueStore,
// so production code uses BadgerDB while tests use the in-memory fake.
package storage

import "errors"

// ErrKeyNotFound is returned by Get when the key has never been set.
var ErrKeyNotFound = errors.New("storage: key not found")

// KeyValueStore is a minimal string-to-string persistent store.
//
// Absent keys are reported via ErrKeyNotFound rather than an empty value so
// callers can distinguish "never saved" from "saved empty".
type KeyValueStore interface {
	// Get returns the value stored under key.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}
