// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package supervisor builds the suture/v4 supervision tree for the console
// process: a stream layer (agent link, WebSocket hub) and an API layer
// (HTTP server), isolated so a failure in one never restarts the other.
package supervisor
