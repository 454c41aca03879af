// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package logstream defines the atomic log event flowing through Warden and the
append-only session buffer that stores it.

The buffer is the single source of truth for a console session. Everything
downstream (filtering, match navigation, windowed rendering, command capture)
is a pure derivation over an immutable snapshot of the buffer, recomputed when
a dependency changes.

Ordering is guaranteed only within a single (source, instance) pair, exactly
as the agent transport delivers events; cross-pair interleaving is arrival
order. The buffer never reorders, never rejects, and never deletes: "clear
view" is a watermark that hides older events from filtered views while keeping
them available to bookmarks and history search.

Pausing freezes the view, not ingestion. While paused, derived views operate
against the snapshot taken at pause time and the buffer keeps growing so the
"N new logs" affordance stays accurate.
*/
package logstream
