// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

package logview

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/warden-console/warden/internal/logstream"
)

// Index is the derived view over a buffer snapshot: the filtered rendered
// lines, the positions matching the active query, and detected issues.
//
// An Index is deterministic given the same snapshot, spec, and reference
// time, and is immutable once built.
type Index struct {
	// Lines is the filtered, classified, rendered line list, capped to the
	// most recent RenderCap entries.
	Lines []Line

	// Matches holds positions into Lines where the active query matched,
	// in ascending order. Empty when the query is empty.
	Matches []int

	// Issues are the detected common problems, sorted by severity then
	// recency, descending.
	Issues []Issue

	// Sentinel reports that Lines holds only the <no logs> placeholder.
	Sentinel bool
}

// BuildIndex derives an Index from a buffer snapshot. It applies, in order:
// view scope, watermark cutoff, the match-only query filter, severity
// classification, the level filter (with the <no logs> sentinel), the render
// cap, and issue detection.
//
// A query that fails to compile (or exceeds MaxPatternLen) returns an error
// and no index; callers are expected to keep their previous valid index
// (fail-soft).
func BuildIndex(events []logstream.Event, watermark int64, spec Spec, ref time.Time) (*Index, error) {
	matcher, err := newMatcher(spec.Query, spec.IsRegex)
	if err != nil {
		return nil, err
	}

	// Scope and watermark first; issue detection works on this slice
	// regardless of query and level filters.
	scoped := make([]logstream.Event, 0, len(events))
	scopedIdx := make([]int, 0, len(events))
	for i, ev := range events {
		if !inScope(ev, spec) {
			continue
		}
		if ev.TSUnix <= watermark {
			continue
		}
		scoped = append(scoped, ev)
		scopedIdx = append(scopedIdx, i)
	}

	lines := make([]Line, 0, len(scoped))
	for i, ev := range scoped {
		text := renderText(ev, spec.TimeMode, ref)
		lower := strings.ToLower(text)

		var spans [][2]int
		if matcher != nil {
			spans = matcher(text, lower)
			if spec.MatchOnly && spans == nil {
				continue
			}
		}

		level := classifyLevel(ev.Line)
		if spec.Level == LevelWarn && level != LevelIsWarn {
			continue
		}
		if spec.Level == LevelError && level != LevelIsError {
			continue
		}

		lines = append(lines, Line{
			Text:       text,
			TextLower:  lower,
			Level:      level,
			IssueClass: classifyIssue(ev.Line),
			Spans:      spans,
			SrcIdx:     scopedIdx[i],
			TSUnix:     ev.TSUnix,
		})
	}

	idx := &Index{Issues: detectIssues(scoped)}

	if spec.Level != LevelAll && spec.Level != "" && len(lines) == 0 {
		idx.Lines = []Line{{Text: NoLogsSentinel, TextLower: NoLogsSentinel, SrcIdx: -1}}
		idx.Sentinel = true
		return idx, nil
	}

	if len(lines) > RenderCap {
		lines = lines[len(lines)-RenderCap:]
	}
	idx.Lines = lines

	for i, line := range lines {
		if line.Spans != nil {
			idx.Matches = append(idx.Matches, i)
		}
	}

	return idx, nil
}

// matcherFunc returns the matched [start,end) byte spans in text, or nil
// when the line does not match.
type matcherFunc func(text, lower string) [][2]int

// newMatcher builds the span matcher for the active query. Returns nil for
// an empty query. Regex patterns compile case-insensitive and are rejected
// before compilation when over MaxPatternLen.
func newMatcher(query string, isRegex bool) (matcherFunc, error) {
	if query == "" {
		return nil, nil
	}

	if isRegex {
		if len(query) > MaxPatternLen {
			return nil, ErrPatternTooLong
		}
		re, err := regexp.Compile("(?i)" + query)
		if err != nil {
			return nil, fmt.Errorf("logview: compile query: %w", err)
		}
		return func(text, _ string) [][2]int {
			found := re.FindAllStringIndex(text, -1)
			if len(found) == 0 {
				return nil
			}
			spans := make([][2]int, len(found))
			for i, m := range found {
				spans[i] = [2]int{m[0], m[1]}
			}
			return spans
		}, nil
	}

	needle := strings.ToLower(query)
	return func(_, lower string) [][2]int {
		var spans [][2]int
		for from := 0; ; {
			rel := strings.Index(lower[from:], needle)
			if rel < 0 {
				break
			}
			start := from + rel
			spans = append(spans, [2]int{start, start + len(needle)})
			from = start + len(needle)
		}
		return spans
	}, nil
}

// inScope applies the view-scope rules:
//
//   - mc/install require an exact instance match on their source
//   - frp matches the selected instance, "<instance>-" prefixed tunnels,
//     and scope-less tunnel events
//   - all matches current-instance events from any source plus scope-less
//     frp events
func inScope(ev logstream.Event, spec Spec) bool {
	switch spec.Scope {
	case ScopeMC:
		return ev.Source == logstream.SourceMC && ev.Instance == spec.Instance
	case ScopeInstall:
		return ev.Source == logstream.SourceInstall && ev.Instance == spec.Instance
	case ScopeFRP:
		if ev.Source != logstream.SourceFRP {
			return false
		}
		return ev.Instance == spec.Instance ||
			strings.HasPrefix(ev.Instance, spec.Instance+"-") ||
			ev.Instance == ""
	default: // ScopeAll
		if ev.Instance == spec.Instance {
			return true
		}
		return ev.Source == logstream.SourceFRP && ev.Instance == ""
	}
}
