// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package middleware provides HTTP middleware shared across the API surface:
// request ID propagation wired into the logging context, and Prometheus
// request instrumentation.
package middleware
