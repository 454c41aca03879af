// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package config

import (
	"fmt"
	"time"

	"github.com/warden-console/warden/internal/validation"
)

// Config is the full console configuration, loaded by LoadWithKoanf.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Agent   AgentConfig   `koanf:"agent"`
	Engine  EngineConfig  `koanf:"engine"`
	Storage StorageConfig `koanf:"storage"`
	Cache   CacheConfig   `koanf:"cache"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AgentConfig holds the websocket link to the intermediary agent.
type AgentConfig struct {
	URL           string        `koanf:"url" validate:"required"`
	Token         string        `koanf:"token"`
	DialTimeout   time.Duration `koanf:"dial_timeout"`
	ReconnectMin  time.Duration `koanf:"reconnect_min"`
	ReconnectMax  time.Duration `koanf:"reconnect_max"`
	SearchTimeout time.Duration `koanf:"search_timeout"`
}

// EngineConfig tunes the log engine's outward-facing limits. The internal
// render and capture limits are fixed constants, not configuration.
type EngineConfig struct {
	// DispatchPerSecond rate-limits console command dispatch per instance.
	DispatchPerSecond float64 `koanf:"dispatch_per_second" validate:"gt=0"`
	DispatchBurst     int     `koanf:"dispatch_burst" validate:"min=1"`
}

// StorageConfig holds the embedded key-value store settings.
type StorageConfig struct {
	// Path is the Badger directory for bookmarks and command history.
	// Empty selects an in-memory store (tests, ephemeral runs).
	Path string `koanf:"path"`
}

// CacheConfig tunes the request cache in front of agent inventory calls.
type CacheConfig struct {
	FreshFor time.Duration `koanf:"fresh_for"`
	StaleFor time.Duration `koanf:"stale_for"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, overridden in order by the
// config file and then environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8420,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Agent: AgentConfig{
			URL:           "ws://127.0.0.1:24444/ws",
			Token:         "",
			DialTimeout:   10 * time.Second,
			ReconnectMin:  time.Second,
			ReconnectMax:  30 * time.Second,
			SearchTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			DispatchPerSecond: 5,
			DispatchBurst:     10,
		},
		Storage: StorageConfig{
			Path: "/data/warden",
		},
		Cache: CacheConfig{
			FreshFor: 10 * time.Second,
			StaleFor: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the assembled configuration. Tag-based checks run first,
// then cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	if c.Agent.ReconnectMin > c.Agent.ReconnectMax {
		return fmt.Errorf("agent.reconnect_min (%s) exceeds agent.reconnect_max (%s)",
			c.Agent.ReconnectMin, c.Agent.ReconnectMax)
	}
	if c.Cache.FreshFor < 0 || c.Cache.StaleFor < 0 {
		return fmt.Errorf("cache windows must not be negative")
	}
	return nil
}
