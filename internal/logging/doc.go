// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package logging provides centralized zerolog-based logging for Warden.

All Warden components log through this package so that output format, level,
and correlation metadata stay consistent across the agent transport, the
engine, and the HTTP API.

# Quick Start

	import "github.com/warden-console/warden/internal/logging"

	// Initialize at application startup
	logging.Init(logging.Config{
	    Level:  "info",
	    Format: "json",
	})

	// Log messages
	logging.Info().Msg("Server starting")
	logging.Error().Err(err).Msg("Operation failed")

	// With context (correlation ID)
	logging.Ctx(ctx).Info().Str("instance", id).Msg("Session opened")

# Configuration

Environment Variables:
  - LOG_LEVEL: debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)

# Best Practices

Always terminate log chains with .Msg() or .Send():

	logging.Info().Str("key", "value").Msg("message")  // Correct
	logging.Info().Str("key", "value")                 // WRONG - log not emitted

Pure derivation code (filtering, windowing, selection) must stay log-free;
logging belongs at I/O boundaries.
*/
package logging
