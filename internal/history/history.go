// Warden - Game Server Operator Console and Live Log Streaming
// Copyright 2026 Warden Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/warden-console/warden

// Package history is a stateless request/response facade over the agent's
// on-disk log search. It never touches the live buffer: history search reads
// rotated log files on the agent host, so watermark clears and pause state
// are irrelevant here.
package history

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/warden-console/warden/internal/logging"
	"github.com/warden-console/warden/internal/logview"
)

// ErrNotFound reports an optional file (whitelist, usercache, rotated log)
// missing on the agent host. Treated as an empty result, not an error
// banner.
var ErrNotFound = errors.New("history: file not found")

// ErrInvalidQuery reports a regex query that failed the shared guards
// before any remote call was made.
var ErrInvalidQuery = errors.New("history: invalid query")

// Request describes one search over the agent's stored logs.
type Request struct {
	Instance      string `json:"instance"`
	Query         string `json:"query"`
	IsRegex       bool   `json:"isRegex"`
	MaxFiles      int    `json:"maxFiles"`
	MaxMatches    int    `json:"maxMatches"`
	ContextBefore int    `json:"contextBefore"`
	ContextAfter  int    `json:"contextAfter"`
}

// Match is one matched line with its surrounding context.
type Match struct {
	File          string   `json:"file"`
	Path          string   `json:"path"`
	LineNo        int      `json:"lineNo"`
	LineNoApprox  bool     `json:"lineNoApprox"`
	Before        []string `json:"before"`
	After         []string `json:"after"`
	Text          string   `json:"text"`
	FileMtimeUnix int64    `json:"fileMtime"`
}

// Response is the remote search result.
type Response struct {
	Matches   []Match  `json:"matches"`
	Files     []string `json:"files"`
	Truncated bool     `json:"truncated"`
}

// Searcher is the remote collaborator executing the search on the agent.
type Searcher interface {
	SearchHistory(ctx context.Context, req Request) (*Response, error)
}

// Default request limits applied when the caller leaves them zero.
const (
	DefaultMaxFiles   = 5
	DefaultMaxMatches = 500
)

// Facade validates requests and delegates to the remote searcher behind a
// circuit breaker. Stateless: every call stands alone.
type Facade struct {
	remote  Searcher
	breaker *gobreaker.CircuitBreaker[*Response]
}

// NewFacade wraps the remote searcher. The breaker opens after five
// consecutive failures and probes again after 30 seconds, so a dead agent
// fails fast instead of piling up requests.
func NewFacade(remote Searcher) *Facade {
	settings := gobreaker.Settings{
		Name:    "history-search",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("history search breaker state change")
		},
	}

	return &Facade{
		remote:  remote,
		breaker: gobreaker.NewCircuitBreaker[*Response](settings),
	}
}

// Search validates the query with the same guards as the live filter
// (length limit, case-insensitive compile) and executes the remote search.
// A missing optional file yields an empty Response, not an error.
func (f *Facade) Search(ctx context.Context, req Request) (*Response, error) {
	if err := validateQuery(req.Query, req.IsRegex); err != nil {
		return nil, err
	}

	if req.MaxFiles <= 0 {
		req.MaxFiles = DefaultMaxFiles
	}
	if req.MaxMatches <= 0 {
		req.MaxMatches = DefaultMaxMatches
	}

	resp, err := f.breaker.Execute(func() (*Response, error) {
		resp, err := f.remote.SearchHistory(ctx, req)
		if errors.Is(err, ErrNotFound) {
			// A missing optional file is an empty result, not a failure
			// the breaker may count toward opening.
			return &Response{}, nil
		}
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("history search %q on %s: %w", req.Query, req.Instance, err)
	}
	if resp == nil {
		resp = &Response{}
	}
	return resp, nil
}

// validateQuery applies the shared regex guards: pattern length before
// compilation, then a case-insensitive compile check.
func validateQuery(query string, isRegex bool) error {
	if !isRegex {
		return nil
	}
	if len(query) > logview.MaxPatternLen {
		return logview.ErrPatternTooLong
	}
	if _, err := regexp.Compile("(?i)" + query); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}
