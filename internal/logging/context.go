package logging

import (
	"context"
	"log/slog"

	"dust/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldGameID is the standardized structured logging key for library record identifiers.
	FieldGameID = "game_id"
	// FieldCatalogID is the standardized structured logging key for DLSite catalog identifiers.
	FieldCatalogID = "catalog_id"
	// FieldAttemptID is the standardized structured logging key for add-attempt identifiers.
	FieldAttemptID = "attempt_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldDecisionType is the standardized structured logging key for decision categories.
	FieldDecisionType = "decision_type"
	// FieldErrorHint suggests a next step when an operation fails.
	FieldErrorHint = "error_hint"
	// FieldImpact names the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldProgressStage names the phase a long-running scan is in.
	FieldProgressStage = "progress_stage"
	// FieldProgressPercent carries scan completion as a 0-100 float.
	FieldProgressPercent = "progress_percent"
	// FieldProgressMessage carries a human-readable progress line.
	FieldProgressMessage = "progress_message"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.GameIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldGameID, id))
	}
	if attempt, ok := services.AttemptIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAttemptID, attempt))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
