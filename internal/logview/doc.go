// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package logview derives filtered, searchable, windowed views over a session's
log buffer.

The pipeline is a set of pure functions over an immutable buffer snapshot:

	scope -> watermark -> query filter -> level classification -> level filter
	      -> issue detection -> match index -> virtual window

BuildIndex is deterministic: the same snapshot, spec, and reference time
always produce the same index. The stateful View wraps BuildIndex with
debounced query commits, fail-soft regex handling (an invalid pattern never
discards the previous valid view), match navigation, follow-to-bottom state,
and the single contiguous selection used for export.

Rendering is always capped to the most recent 2000 lines after filtering;
issue detection scans the last 2000 scoped lines.
*/
package logview
