package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

// attrPair is a flattened key/value attribute, groups joined with dots.
type attrPair struct {
	key   string
	value slog.Value
}

// recordSubject identifies who a log line is about, extracted from the
// identity attributes.
type recordSubject struct {
	component string
	gameID    string
	catalogID string
}

type consoleHandler struct {
	mu        sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
	seenInfo  map[string]map[string]string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{writer: w, level: lvl, addSource: addSource, seenInfo: make(map[string]map[string]string)}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	pairs := make([]attrPair, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&pairs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&pairs, h.groups, attr)
		return true
	})
	pairs = dedupePairs(pairs)

	subject, body := splitSubject(pairs)

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(256 + len(body)*32)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.writeHeader(&buf, timestamp, record.Level, subject, message, recordSource(record))
	if record.Level < slog.LevelInfo {
		h.writeAllFields(&buf, pairs)
	} else {
		h.writeInfoFields(&buf, subject, record.Level, body)
	}
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// recordSource mirrors slog.Record.Source, which requires Go 1.25; this module
// builds with Go 1.21 toolchains.
func recordSource(record slog.Record) *slog.Source {
	if record.PC == 0 {
		return nil
	}
	frames := runtime.CallersFrames([]uintptr{record.PC})
	frame, _ := frames.Next()
	return &slog.Source{Function: frame.Function, File: frame.File, Line: frame.Line}
}

// splitSubject pulls the identity attributes out of pairs. The component is
// dropped from the body since the header renders it; game and catalog ids stay
// so debug output keeps them visible.
func splitSubject(pairs []attrPair) (recordSubject, []attrPair) {
	var subject recordSubject
	body := make([]attrPair, 0, len(pairs))
	for _, pair := range pairs {
		switch pair.key {
		case FieldComponent:
			if subject.component == "" {
				subject.component = attrString(pair.value)
			}
			continue
		case FieldGameID:
			if subject.gameID == "" {
				subject.gameID = attrString(pair.value)
			}
		case FieldCatalogID:
			if subject.catalogID == "" {
				subject.catalogID = attrString(pair.value)
			}
		}
		body = append(body, pair)
	}
	return subject, body
}

func (h *consoleHandler) writeHeader(buf *bytes.Buffer, ts time.Time, level slog.Level, subject recordSubject, message string, src *slog.Source) {
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(level))
	if subject.component != "" {
		buf.WriteString(" [")
		buf.WriteString(subject.component)
		buf.WriteByte(']')
	}
	if line := FormatSubject(subject.gameID, subject.catalogID); line != "" {
		buf.WriteByte(' ')
		buf.WriteString(line)
	}
	if message != "" {
		buf.WriteString(" - ")
		buf.WriteString(message)
	}
	if h.addSource && src != nil {
		buf.WriteString(" [")
		buf.WriteString(filepath.Base(src.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(src.Line))
		buf.WriteByte(']')
	}
	buf.WriteByte('\n')
}

func (h *consoleHandler) writeInfoFields(buf *bytes.Buffer, subject recordSubject, level slog.Level, pairs []attrPair) {
	fields, hidden := selectInfoFields(pairs, 0, true)
	fields, hidden = h.dropRepeats(infoSummaryKey(subject.component, subject.gameID, subject.catalogID), fields, hidden, level)
	for _, field := range fields {
		buf.WriteString("    - ")
		buf.WriteString(field.label)
		buf.WriteString(": ")
		buf.WriteString(field.value)
		buf.WriteByte('\n')
	}
	if hidden > 0 {
		buf.WriteString("    + ")
		buf.WriteString(strconv.Itoa(hidden))
		buf.WriteString(" more field")
		if hidden != 1 {
			buf.WriteByte('s')
		}
		buf.WriteString(" hidden\n")
	}
}

func (h *consoleHandler) writeAllFields(buf *bytes.Buffer, pairs []attrPair) {
	for _, pair := range pairs {
		if pair.key == "" {
			continue
		}
		buf.WriteString("    ")
		buf.WriteString(pair.key)
		buf.WriteString(": ")
		buf.WriteString(formatValue(pair.value))
		buf.WriteByte('\n')
	}
}

// dropRepeats suppresses info bullets whose value has not changed since the
// last line about the same subject, keeping steady-state output quiet.
// Warnings and errors always show their fields.
func (h *consoleHandler) dropRepeats(key string, fields []infoField, hidden int, level slog.Level) ([]infoField, int) {
	if key == "" || len(fields) == 0 {
		return fields, hidden
	}
	seen := h.seenInfo[key]
	if seen == nil {
		seen = make(map[string]string)
		h.seenInfo[key] = seen
	}
	if level > slog.LevelInfo {
		for _, field := range fields {
			seen[field.label] = field.value
		}
		return fields, hidden
	}
	kept := fields[:0]
	for _, field := range fields {
		if prev, ok := seen[field.label]; ok && prev == field.value {
			continue
		}
		seen[field.label] = field.value
		kept = append(kept, field)
	}
	return kept, hidden
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	clone := &consoleHandler{
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
		seenInfo:  h.seenInfo,
	}
	clone.attrs = append(clone.attrs, h.attrs...)
	clone.groups = append(clone.groups, h.groups...)
	return clone
}

func dedupePairs(pairs []attrPair) []attrPair {
	if len(pairs) < 2 {
		return pairs
	}
	positions := make(map[string]int, len(pairs))
	deduped := make([]attrPair, 0, len(pairs))
	for _, pair := range pairs {
		if pair.key == "" {
			continue
		}
		if pos, ok := positions[pair.key]; ok {
			deduped[pos].value = pair.value
			continue
		}
		positions[pair.key] = len(deduped)
		deduped = append(deduped, pair)
	}
	return deduped
}

func flattenAttrs(dst *[]attrPair, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]attrPair, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		nested := prefix
		if attr.Key != "" {
			nested = append(append(make([]string, 0, len(prefix)+1), prefix...), attr.Key)
		}
		flattenAttrs(dst, nested, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		if key != "" {
			key = strings.Join(prefix, ".") + "." + key
		} else {
			key = strings.Join(prefix, ".")
		}
	}
	*dst = append(*dst, attrPair{key: key, value: attr.Value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
