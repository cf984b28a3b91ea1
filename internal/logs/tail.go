package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// TailOptions selects which part of the log file to read. A negative Offset
// requests the last Limit lines; a non-negative Offset resumes reading from
// that byte position. With Follow set, an empty read polls for new lines
// until Wait elapses.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the returned lines and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// pollInterval paces follow-mode reads between checks for appended lines.
const pollInterval = 250 * time.Millisecond

// Tail reads lines from the log file at path. Only newline-terminated lines
// are returned and the offset always lands after the last complete line, so
// a record the daemon is mid-write on is picked up whole by the next call.
// A missing file yields an empty result at offset zero.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	wait := opts.Wait
	if wait < 0 {
		wait = 0
	}

	var lines []string
	var offset int64
	if opts.Offset < 0 {
		lines, offset, err = lastLines(path, opts.Limit)
	} else {
		start := opts.Offset
		if start > info.Size() {
			start = info.Size()
		}
		lines, offset, err = linesFrom(path, start)
	}
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = offset

	if opts.Follow && wait > 0 && len(lines) == 0 {
		return followLines(ctx, path, offset, wait)
	}
	return result, nil
}

// lastLines returns up to limit complete lines from the end of the file and
// the offset just past the last one. The whole file is scanned; retention
// keeps daemon logs small enough for that to stay cheap.
func lastLines(path string, limit int) ([]string, int64, error) {
	lines, offset, err := linesFrom(path, 0)
	if err != nil || limit <= 0 {
		return nil, offset, err
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines, offset, nil
}

// linesFrom reads newline-terminated lines starting at offset and reports
// the byte position after the last one. An unterminated trailing fragment is
// left for a later call.
func linesFrom(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	var lines []string
	pos := offset
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			pos += int64(len(line))
			lines = append(lines, strings.TrimRight(line, "\r\n"))
			continue
		}
		if errors.Is(err, io.EOF) {
			return lines, pos, nil
		}
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
}

// followLines polls for lines appended after offset until some arrive, wait
// elapses, or the context ends.
func followLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	deadline := time.Now().Add(wait)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		lines, next, err := linesFrom(path, offset)
		if err != nil {
			return result, err
		}
		result.Offset = next
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}
		if time.Now().After(deadline) {
			return result, nil
		}
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
