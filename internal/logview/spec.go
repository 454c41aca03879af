// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import "errors"

// ViewScope restricts a filtered view to a source/instance combination.
type ViewScope string

const (
	// ScopeAll shows current-instance events from every source plus
	// scope-less tunnel events.
	ScopeAll ViewScope = "all"

	// ScopeMC shows only the game-server process output of the instance.
	ScopeMC ViewScope = "mc"

	// ScopeInstall shows only installer output of the instance.
	ScopeInstall ViewScope = "install"

	// ScopeFRP shows tunnel output for the instance, its "<instance>-"
	// prefixed tunnels, and the shared tunnel daemon.
	ScopeFRP ViewScope = "frp"
)

// LevelFilter drops lines below a severity.
type LevelFilter string

const (
	LevelAll   LevelFilter = "all"
	LevelWarn  LevelFilter = "warn"
	LevelError LevelFilter = "error"
)

// TimeMode selects how timestamps are rendered into line text.
type TimeMode string

const (
	// TimeLocal renders wall-clock timestamps.
	TimeLocal TimeMode = "local"

	// TimeRelative renders age relative to the render pass.
	TimeRelative TimeMode = "relative"
)

// Spec is the full description of a filtered view. Derived state, never
// persisted.
type Spec struct {
	Scope     ViewScope
	Instance  string
	Query     string
	IsRegex   bool
	MatchOnly bool
	Level     LevelFilter
	TimeMode  TimeMode
}

// DefaultSpec returns the view every session starts with.
func DefaultSpec(instance string) Spec {
	return Spec{
		Scope:    ScopeAll,
		Instance: instance,
		Level:    LevelAll,
		TimeMode: TimeLocal,
	}
}

const (
	// RenderCap bounds rendering to the most recent N lines after filtering.
	RenderCap = 2000

	// MaxPatternLen rejects regex patterns longer than this before
	// compilation.
	MaxPatternLen = 160

	// NoLogsSentinel is the single line rendered when a level filter
	// empties the view.
	NoLogsSentinel = "<no logs>"
)

// ErrPatternTooLong is returned when a regex query exceeds MaxPatternLen.
// Callers keep the previous valid view (fail-soft).
var ErrPatternTooLong = errors.New("logview: pattern too long")
