// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package websocket fans live updates out to connected operator UIs.

This package pushes log events, command capture results, and agent link
status to every open console so operators see the stream without polling.
It uses the gorilla/websocket library with a hub-client architecture.

Key Components:

  - Hub: Central broker that manages client connections and broadcasts
  - Client: One operator UI connection with read/write goroutines
  - Message: Typed envelope for the different event kinds

Each client has two goroutines:
  - readPump: Reads from the socket, answers pings, detects disconnects
  - writePump: Drains the client's send channel, emits keepalive pings

Slow clients never stall the stream: a client whose send channel is full is
dropped and must reconnect. The UI resynchronizes through the view API on
reconnect, so a dropped frame costs nothing.

Message Types:

  - log_event: one appended LogEvent
  - capture_output: a finalized command output capture
  - agent_status: agent link up/down transitions
  - view_invalidate: the filtered view changed server-side; refetch

The hub is run under the supervision tree via Serve, which closes every
client on shutdown.
*/
package websocket
