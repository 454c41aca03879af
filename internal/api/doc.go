// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package api serves the operator console over HTTP: filtered view state and
// virtualized windows, match navigation, pause and clear, selection export,
// bookmarks, console command dispatch with output capture, historical log
// search, and a WebSocket feed for live pushes.
//
// Routing uses chi with go-chi/cors and go-chi/httprate; every JSON endpoint
// responds with the APIResponse envelope.
package api
