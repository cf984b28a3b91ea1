// Package logstream drives log output for the CLI: structured events from
// the daemon's HTTP API when it is reachable, raw file tailing over the
// socket otherwise.
package logstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dust/internal/api"
	"dust/internal/ipc"
	"dust/internal/logs"
)

var ErrFiltersRequireAPI = errors.New("log filters require API access")

// TailClient captures the IPC log tail contract used for fallback streaming.
type TailClient interface {
	LogTail(req ipc.LogTailRequest) (*ipc.LogTailResponse, error)
}

// Filters contains optional predicates supported by API log streaming.
type Filters struct {
	Component string
	GameID    int64
	CatalogID string
	AttemptID string
	Level     string
	Search    string
}

func (f Filters) empty() bool {
	return strings.TrimSpace(f.Component) == "" &&
		strings.TrimSpace(f.CatalogID) == "" &&
		strings.TrimSpace(f.AttemptID) == "" &&
		strings.TrimSpace(f.Level) == "" &&
		strings.TrimSpace(f.Search) == "" &&
		f.GameID == 0
}

func (f Filters) query(lines int) logs.StreamQuery {
	if lines <= 0 {
		lines = 200
	}
	return logs.StreamQuery{
		Limit:     lines,
		Tail:      true,
		Component: f.Component,
		GameID:    f.GameID,
		CatalogID: f.CatalogID,
		AttemptID: f.AttemptID,
		Level:     f.Level,
		Search:    f.Search,
	}
}

// Options controls stream behavior.
type Options struct {
	Lines   int
	Follow  bool
	Filters Filters
}

// Stream emits log output from the API when available, falling back to IPC
// tailing. It reports whether at least one event or line was emitted.
func Stream(
	ctx context.Context,
	apiClient *logs.StreamClient,
	legacy TailClient,
	opts Options,
	onEvent func(api.LogEvent),
	onLine func(string),
) (bool, error) {
	printed, err := streamAPI(ctx, apiClient, opts, onEvent)
	if err == nil {
		return printed, nil
	}
	if !logs.IsAPIUnavailable(err) {
		return printed, err
	}
	if !opts.Filters.empty() {
		return false, fmt.Errorf("%w: %w", ErrFiltersRequireAPI, logs.ErrAPIUnavailable)
	}
	if legacy == nil {
		return false, logs.ErrAPIUnavailable
	}
	return streamLegacy(ctx, legacy, opts, onLine)
}

func streamAPI(
	ctx context.Context,
	client *logs.StreamClient,
	opts Options,
	onEvent func(api.LogEvent),
) (bool, error) {
	query := opts.Filters.query(opts.Lines)

	printed := false
	for {
		resp, err := client.Fetch(ctx, query)
		if err != nil {
			return printed, err
		}
		for _, evt := range resp.Events {
			if onEvent != nil {
				onEvent(evt)
			}
			printed = true
		}
		if !opts.Follow {
			return printed, nil
		}
		// Subsequent pages resume from the cursor instead of re-tailing.
		query.Since = resp.Next
		query.Limit = 200
		query.Tail = false
		query.Follow = true
	}
}

func streamLegacy(ctx context.Context, client TailClient, opts Options, onLine func(string)) (bool, error) {
	// A negative initial offset asks for the last Lines lines; with zero
	// lines requested the first call just positions the cursor at the end.
	req := ipc.LogTailRequest{
		Offset:     -1,
		Limit:      opts.Lines,
		Follow:     opts.Follow,
		WaitMillis: 1000,
	}
	if req.Limit < 0 {
		req.Limit = 0
	}

	printed := false
	for {
		resp, err := client.LogTail(req)
		if err != nil {
			return printed, fmt.Errorf("tail logs: %w", err)
		}
		if resp == nil {
			return printed, errors.New("log tail response missing")
		}
		for _, line := range resp.Lines {
			if onLine != nil {
				onLine(line)
			}
			printed = true
		}
		if !opts.Follow {
			return printed, nil
		}
		if err := ctx.Err(); err != nil {
			return printed, nil
		}
		req.Offset = resp.Offset
		req.Limit = 0
	}
}
