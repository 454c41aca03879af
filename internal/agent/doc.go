// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package agent speaks to the intermediary agent that manages game-server
processes on the remote host.

One websocket connection carries everything: the agent pushes log events
(process output, install logs, tunnel logs) ordered per (source, instance),
and the console sends console-line dispatches and history-search requests
over the same pipe. Dispatch is fire-and-forget; there is no structured
reply, success shows up as log lines. History search is the only
request/response exchange and is correlated by request id.

The client reconnects with backoff and implements suture.Service so the
supervisor restarts it on failure. Delivery to subscribers is push-based
observer registration; the engine must never block transport reads, so
subscriber callbacks are expected to be fast (they only append to a
buffer).
*/
package agent
