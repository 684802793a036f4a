package logging

import (
	"context"
	"log/slog"

	"gtreg/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchID identifies one ingestion run.
	FieldBatchID = "batch_id"
	// FieldSubmissionIndex is the zero-based position of a submission within its batch.
	FieldSubmissionIndex = "submission_index"
	// FieldEntityKind names the entity kind being resolved (manufacturer, model, ...).
	FieldEntityKind = "entity_kind"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact         = "impact"
	FieldDecisionType   = "decision_type"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"
	FieldScore          = "score"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.BatchIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBatchID, id))
	}
	if index, ok := services.SubmissionIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldSubmissionIndex, index))
	}
	if kind, ok := services.EntityKindFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldEntityKind, kind))
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
	return logger.With(Args(fields...)...)
}
