// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

/*
Package capture correlates operator-issued console commands with the log
lines they provoke.

Console commands (tps, save-all, ...) have no structured response channel:
the agent writes the command to the process stdin and the reply, if any,
surfaces as ordinary log lines. The correlator infers the reply by temporal
and identity correlation: a short-lived capture opens at dispatch with a
cursor at the current buffer length, attributes only subsequently appended
lines from the instance's own process stream, and finalizes after a fixed
quiescence window into an immutable output kept in a small ring.

The cursor advances monotonically; the same buffer slice is never scanned
twice, and lines from other instances or sources are never attributed. A
new dispatch finalizes the prior capture immediately and cancels its timer,
so two finalizations can never run for one capture id.
*/
package capture
