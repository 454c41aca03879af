// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package metrics provides Prometheus metrics collection and export.

All collectors are registered on the default registry at init via promauto,
so importing any instrumented package is enough to make its metrics appear.

# Overview

The package provides metrics for:
  - Log event ingestion rates and live buffer growth
  - Filter index rebuild counts and latency
  - Command capture correlation (dispatches, finalized outputs)
  - Agent websocket link health and reconnects
  - History search latency and circuit-breaker state
  - WebSocket fan-out to operator UIs
  - API request latency, throughput, and rate limiting
  - Request cache hit/miss/stale rates

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8420/metrics

# Cardinality

Per-instance labels (buffer length, pause state, dispatch counts) are bound
to operator-configured instance names, a small fixed set. No label ever
carries log content, query text, or other unbounded values.
*/
package metrics
