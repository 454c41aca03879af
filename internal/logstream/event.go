// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logstream

// Source identifies which producer emitted a log event.
type Source string

const (
	// SourceDaemon is the intermediary agent's own log output.
	SourceDaemon Source = "daemon"

	// SourceMC is the game-server process (stdout/stderr of the instance).
	SourceMC Source = "mc"

	// SourceInstall is installer/provisioning output for an instance.
	SourceInstall Source = "install"

	// SourceFRP is tunnel client output. FRP events may carry an empty
	// instance (shared tunnel daemon) or a "<instance>-" prefixed one.
	SourceFRP Source = "frp"
)

// Stream distinguishes stdout from stderr where the producer reports it.
type Stream string

const (
	StreamStdout Stream = "stdout"
	StreamStderr Stream = "stderr"

	// StreamNone is used by producers that do not split output streams.
	StreamNone Stream = ""
)

// Event is the atomic unit flowing through the engine. Immutable once
// created; the transport constructs it and the buffer only ever appends.
//
// A missing Line is permitted and renders as an empty line.
type Event struct {
	Source   Source `json:"source"`
	Instance string `json:"instance,omitempty"`
	Stream   Stream `json:"stream,omitempty"`
	TSUnix   int64  `json:"ts,omitempty"`
	Line     string `json:"line"`
}
