// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"sort"
	"strings"

	"github.com/warden-console/warden/internal/logstream"
)

// IssueSeverity orders detected issues for display.
type IssueSeverity int

const (
	SeverityWarn IssueSeverity = iota
	SeverityDanger
)

// Issue is a detected common problem: the most recent occurrence of a known
// failure signature in the scoped view.
type Issue struct {
	ID       string        `json:"id"`
	Severity IssueSeverity `json:"severity"`
	Cause    string        `json:"cause"`
	Sample   string        `json:"sample"`
	TSUnix   int64         `json:"ts"`
}

// issueRule maps one or more case-insensitive substring signatures to a
// cause. Signatures are stored lowercased.
type issueRule struct {
	id         string
	severity   IssueSeverity
	cause      string
	signatures []string
}

// issueRules is the fixed signature table. Order is not significant; results
// are sorted by severity then recency.
var issueRules = []issueRule{
	{
		id:       "eula",
		severity: SeverityDanger,
		cause:    "EULA not accepted: edit eula.txt and set eula=true",
		signatures: []string{
			"you need to agree to the eula",
			"go to eula.txt for more info",
		},
	},
	{
		id:       "port-bound",
		severity: SeverityDanger,
		cause:    "Port already bound by another process",
		signatures: []string{
			"address already in use",
			"failed to bind to port",
		},
	},
	{
		id:       "oom",
		severity: SeverityDanger,
		cause:    "Process ran out of memory: raise the instance memory limit",
		signatures: []string{
			"outofmemoryerror",
			"out of memory",
		},
	},
	{
		id:       "java-version",
		severity: SeverityDanger,
		cause:    "Java version mismatch: the server jar needs a newer runtime",
		signatures: []string{
			"unsupportedclassversionerror",
			"compiled by a more recent version of the java runtime",
		},
	},
	{
		id:       "jar-bootstrap",
		severity: SeverityDanger,
		cause:    "Server jar failed to start: check the jar path and file",
		signatures: []string{
			"unable to access jarfile",
			"no main manifest attribute",
		},
	},
	{
		id:       "frp-auth",
		severity: SeverityWarn,
		cause:    "Tunnel authentication failed: check the frp token",
		signatures: []string{
			"token in login doesn't match token from configuration",
			"authorization failed",
		},
	},
}

const issueSampleLimit = 160

// detectIssues scans the last issueScanCap scoped events and returns, per
// issue id, the most recently seen occurrence (by timestamp, falling back
// to buffer order). Results sort by severity then recency, descending.
func detectIssues(scoped []logstream.Event) []Issue {
	const issueScanCap = 2000
	if len(scoped) > issueScanCap {
		scoped = scoped[len(scoped)-issueScanCap:]
	}

	latest := make(map[string]Issue, len(issueRules))

	for _, ev := range scoped {
		lower := strings.ToLower(ev.Line)
		for _, rule := range issueRules {
			if !matchesRule(lower, rule) {
				continue
			}
			prev, seen := latest[rule.id]
			if seen && prev.TSUnix > ev.TSUnix {
				continue
			}
			latest[rule.id] = Issue{
				ID:       rule.id,
				Severity: rule.severity,
				Cause:    rule.cause,
				Sample:   truncate(ev.Line, issueSampleLimit),
				TSUnix:   ev.TSUnix,
			}
		}
	}

	issues := make([]Issue, 0, len(latest))
	for _, issue := range latest {
		issues = append(issues, issue)
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[i].Severity > issues[j].Severity
		}
		if issues[i].TSUnix != issues[j].TSUnix {
			return issues[i].TSUnix > issues[j].TSUnix
		}
		return issues[i].ID < issues[j].ID
	})
	return issues
}

// classifyIssue returns the emphasis class for a single line, using the
// same signature table as detectIssues.
func classifyIssue(line string) IssueClass {
	lower := strings.ToLower(line)
	class := IssueNone
	for _, rule := range issueRules {
		if !matchesRule(lower, rule) {
			continue
		}
		if rule.severity == SeverityDanger {
			return IssueDanger
		}
		class = IssueWarn
	}
	return class
}

func matchesRule(lowerLine string, rule issueRule) bool {
	for _, sig := range rule.signatures {
		if strings.Contains(lowerLine, sig) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
