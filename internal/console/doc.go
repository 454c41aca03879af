// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package console assembles the log engine: the live buffer, the filtered
view, command capture, bookmarks, command history, and remote history
search, behind one Engine the API layer talks to.

Engine.Feed is the single ingestion point: the agent client's subscription
delivers every pushed log event here, which appends it to the buffer (in
turn waking the view and any in-flight capture) and mirrors it to connected
operator UIs.

Dispatch applies a per-instance token-bucket rate limit before handing the
command to the capture correlator, so a stuck operator script cannot flood
a game server's console.
*/
package console
