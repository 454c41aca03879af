// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Log stream ingestion and buffer growth
// - Filter index rebuilds
// - Command capture correlation
// - Agent link health
// - History search latency and circuit breaker
// - WebSocket fan-out to operator UIs
// - API endpoint latency and throughput
// - Request cache efficiency

var (
	// Log Stream Metrics
	LogEventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logstream_events_ingested_total",
			Help: "Total number of log events appended to the live buffer",
		},
		[]string{"source"}, // "daemon", "mc", "install", "frp"
	)

	LogBufferLength = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "logstream_buffer_length",
			Help: "Current logical length of the live buffer per instance",
		},
		[]string{"instance"},
	)

	LogViewPaused = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "logstream_view_paused",
			Help: "Whether the live view is paused (1) or following (0)",
		},
		[]string{"instance"},
	)

	// Filter Index Metrics
	IndexRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logview_index_rebuilds_total",
			Help: "Total number of filter index rebuilds",
		},
	)

	IndexRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logview_index_rebuild_duration_seconds",
			Help:    "Duration of filter index rebuilds in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
	)

	IndexQueryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "logview_query_errors_total",
			Help: "Total number of rejected filter queries (invalid or oversized regex)",
		},
	)

	// Command Capture Metrics
	CommandsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capture_commands_dispatched_total",
			Help: "Total number of console commands dispatched to the agent",
		},
		[]string{"instance"},
	)

	CapturesFinalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capture_outputs_finalized_total",
			Help: "Total number of command output captures closed by quiescence or supersession",
		},
	)

	CaptureLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "capture_output_lines",
			Help:    "Number of log lines attributed to each finalized capture",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 120},
		},
	)

	// Agent Link Metrics
	AgentConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_connected",
			Help: "Whether the agent websocket link is up (1) or down (0)",
		},
	)

	AgentReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_reconnects_total",
			Help: "Total number of agent reconnection attempts",
		},
	)

	AgentMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_messages_received_total",
			Help: "Total number of messages received from the agent",
		},
		[]string{"type"}, // "log", "search_result", "pong", "unknown"
	)

	// History Search Metrics
	HistorySearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "history_search_duration_seconds",
			Help:    "Duration of remote history searches in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	HistorySearchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_search_errors_total",
			Help: "Total number of failed history searches",
		},
		[]string{"error_type"}, // "validation", "remote", "breaker_open"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected operator UIs",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent to operator UIs",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of messages dropped on slow WebSocket clients",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "nodes", "instances"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheStaleServes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_stale_serves_total",
			Help: "Total number of stale values served while revalidating",
		},
		[]string{"cache_type"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordIndexRebuild records one filter index recomputation.
func RecordIndexRebuild(duration time.Duration) {
	IndexRebuilds.Inc()
	IndexRebuildDuration.Observe(duration.Seconds())
}

// RecordCaptureFinalized records one closed command output capture.
func RecordCaptureFinalized(lines int) {
	CapturesFinalized.Inc()
	CaptureLines.Observe(float64(lines))
}

// RecordHistorySearch records one remote search outcome.
func RecordHistorySearch(duration time.Duration, errType string) {
	HistorySearchDuration.Observe(duration.Seconds())
	if errType != "" {
		HistorySearchErrors.WithLabelValues(errType).Inc()
	}
}
