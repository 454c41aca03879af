// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package main is the entry point for the Warden console server.
//
// Warden is a self-hosted operator console for game servers. It maintains a
// websocket link to an on-host agent, buffers the live log stream from the
// game process and its managers, and serves a REST and websocket API for
// operator UIs: filtered log views, console command dispatch with output
// capture, bookmarks, and search over archived log files.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config file, then environment (Koanf v2)
//  2. Storage: BadgerDB for bookmarks and command history
//  3. Agent client: websocket link with reconnect backoff
//  4. Engine: session buffer, filtered view, capture correlator
//  5. WebSocket hub: real-time push to connected operator UIs
//  6. HTTP server: REST API plus the websocket upgrade endpoint
//
// Everything long-running is owned by a suture supervisor tree, split into
// a stream layer (agent link, hub) and an API layer (HTTP server) so agent
// reconnect storms never restart the HTTP listener.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (WARDEN_ prefix, e.g. WARDEN_SERVER_PORT)
//   - Config file (warden.yaml, or WARDEN_CONFIG)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Disconnects the agent link and closes all UI sockets
//   - Closes the Badger store
//
// # Example Usage
//
// Development against a local agent, no persistence:
//
//	export WARDEN_AGENT_URL=ws://127.0.0.1:24444/ws
//	export WARDEN_STORAGE_PATH=
//	export WARDEN_LOGGING_FORMAT=console
//	./warden
//
// Production:
//
//	export WARDEN_AGENT_URL=ws://gamehost:24444/ws
//	export WARDEN_AGENT_TOKEN=your-agent-token
//	export WARDEN_STORAGE_PATH=/data/warden
//	./warden
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warden-console/warden/internal/agent"
	"github.com/warden-console/warden/internal/api"
	"github.com/warden-console/warden/internal/cache"
	"github.com/warden-console/warden/internal/clock"
	"github.com/warden-console/warden/internal/config"
	"github.com/warden-console/warden/internal/console"
	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/storage"
	"github.com/warden-console/warden/internal/supervisor"
	ws "github.com/warden-console/warden/internal/websocket"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("agent_url", cfg.Agent.URL).
		Str("storage_path", cfg.Storage.Path).
		Msg("Starting Warden")

	// Persistent store for bookmarks and command history. An empty path
	// selects the in-memory store (development, ephemeral runs).
	var kv storage.KeyValueStore
	if cfg.Storage.Path == "" {
		logging.Info().Msg("No storage path configured, bookmarks and history are ephemeral")
		kv = storage.NewMemoryStore()
	} else {
		badgerStore, err := storage.OpenBadger(cfg.Storage.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open storage")
		}
		defer func() {
			if err := badgerStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing storage")
			}
		}()
		kv = badgerStore
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// WebSocket hub for real-time push to operator UIs. Created before the
	// agent client so link transitions can be mirrored to UIs.
	hub := ws.NewHub()

	agentClient := agent.NewClient(agent.Config{
		URL:           cfg.Agent.URL,
		Token:         cfg.Agent.Token,
		DialTimeout:   cfg.Agent.DialTimeout,
		ReconnectMin:  cfg.Agent.ReconnectMin,
		ReconnectMax:  cfg.Agent.ReconnectMax,
		SearchTimeout: cfg.Agent.SearchTimeout,
		OnStatusChange: func(connected bool) {
			hub.BroadcastAgentStatus(connected, cfg.Agent.URL)
		},
	})

	engine := console.NewEngine(agentClient, kv, clock.New(), console.Options{
		DispatchPerSecond: cfg.Engine.DispatchPerSecond,
		DispatchBurst:     cfg.Engine.DispatchBurst,
		Notifier:          hub,
	})
	defer engine.Close()

	// Every pushed log event flows through the engine: buffer, view,
	// capture attribution, then fan-out to UIs.
	unsubscribe := agentClient.Subscribe(engine.Feed)
	defer unsubscribe()

	requestCache := cache.New(cache.Config{
		FreshFor: cfg.Cache.FreshFor,
		StaleFor: cfg.Cache.StaleFor,
	})

	handler := api.NewHandler(engine, hub, requestCache, agentClient, version)
	router := api.NewRouter(handler, &api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
		RateLimitDisabled:  cfg.Server.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddStreamService(supervisor.NamedService{Name: "agent-link", Service: agentClient})
	tree.AddStreamService(supervisor.NamedService{Name: "websocket-hub", Service: hub})
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// The error channel closes when the supervisor has fully stopped.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Warden stopped gracefully")
}
