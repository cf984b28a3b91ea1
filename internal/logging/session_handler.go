package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID is the standardized structured logging key for daemon run identifiers.
const FieldSessionID = "session_id"

// sessionIDHandler stamps every record with the daemon run identifier so logs
// from overlapping runs can be told apart.
type sessionIDHandler struct {
	slog.Handler
	stamp slog.Attr
}

func newSessionIDHandler(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &sessionIDHandler{Handler: base, stamp: slog.String(FieldSessionID, sessionID)}
}

func (h *sessionIDHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(h.stamp)
	return h.Handler.Handle(ctx, record)
}

func (h *sessionIDHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionIDHandler{Handler: h.Handler.WithAttrs(attrs), stamp: h.stamp}
}

func (h *sessionIDHandler) WithGroup(name string) slog.Handler {
	return &sessionIDHandler{Handler: h.Handler.WithGroup(name), stamp: h.stamp}
}
