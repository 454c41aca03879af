// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"strings"
	"testing"

	"github.com/warden-console/warden/internal/logstream"
)

func TestDetectIssues_KnownSignatures(t *testing.T) {
	tests := []struct {
		line   string
		wantID string
	}{
		{"[main/WARN] You need to agree to the EULA in order to run the server", "eula"},
		{"java.net.BindException: Address already in use: bind", "port-bound"},
		{"java.lang.OutOfMemoryError: Java heap space", "oom"},
		{"UnsupportedClassVersionError: net/minecraft/server has been compiled", "java-version"},
		{"Error: Unable to access jarfile server.jar", "jar-bootstrap"},
		{"[frpc] token in login doesn't match token from configuration", "frp-auth"},
	}

	for _, tt := range tests {
		t.Run(tt.wantID, func(t *testing.T) {
			issues := detectIssues([]logstream.Event{
				{Source: logstream.SourceMC, Instance: "s1", TSUnix: 10, Line: tt.line},
			})
			if len(issues) != 1 || issues[0].ID != tt.wantID {
				t.Errorf("expected issue %s, got %+v", tt.wantID, issues)
			}
		})
	}
}

func TestDetectIssues_KeepsMostRecentOccurrence(t *testing.T) {
	issues := detectIssues([]logstream.Event{
		{TSUnix: 100, Line: "Address already in use: first"},
		{TSUnix: 300, Line: "Address already in use: third"},
		{TSUnix: 200, Line: "Address already in use: second"},
	})

	if len(issues) != 1 {
		t.Fatalf("expected one issue entry per id, got %d", len(issues))
	}
	if issues[0].TSUnix != 300 || !strings.Contains(issues[0].Sample, "third") {
		t.Errorf("expected most recent occurrence, got %+v", issues[0])
	}
}

func TestDetectIssues_SortsBySeverityThenRecency(t *testing.T) {
	issues := detectIssues([]logstream.Event{
		{TSUnix: 500, Line: "authorization failed"},                  // warn
		{TSUnix: 100, Line: "Address already in use"},                // danger, older
		{TSUnix: 200, Line: "java.lang.OutOfMemoryError: heap"},      // danger, newer
	})

	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d", len(issues))
	}
	if issues[0].ID != "oom" || issues[1].ID != "port-bound" || issues[2].ID != "frp-auth" {
		t.Errorf("wrong order: %s, %s, %s", issues[0].ID, issues[1].ID, issues[2].ID)
	}
}

func TestDetectIssues_CaseInsensitive(t *testing.T) {
	issues := detectIssues([]logstream.Event{
		{TSUnix: 1, Line: "ADDRESS ALREADY IN USE"},
	})
	if len(issues) != 1 || issues[0].ID != "port-bound" {
		t.Errorf("signatures must match case-insensitively, got %+v", issues)
	}
}

func TestDetectIssues_SampleTruncated(t *testing.T) {
	long := "Unable to access jarfile " + strings.Repeat("x", 400)
	issues := detectIssues([]logstream.Event{{TSUnix: 1, Line: long}})

	if len(issues) != 1 {
		t.Fatalf("expected one issue, got %d", len(issues))
	}
	if len(issues[0].Sample) > issueSampleLimit {
		t.Errorf("sample too long: %d chars", len(issues[0].Sample))
	}
}

func TestClassifyIssue_PerLineEmphasis(t *testing.T) {
	if got := classifyIssue("Address already in use"); got != IssueDanger {
		t.Errorf("expected danger class, got %q", got)
	}
	if got := classifyIssue("authorization failed"); got != IssueWarn {
		t.Errorf("expected warn class, got %q", got)
	}
	if got := classifyIssue("a calm line"); got != IssueNone {
		t.Errorf("expected no class, got %q", got)
	}
}
