package services

import "context"

type contextKey string

const (
	batchIDKey         contextKey = "batch_id"
	submissionIndexKey contextKey = "submission_index"
	entityKindKey      contextKey = "entity_kind"
	requestIDKey       contextKey = "request_id"
)

// WithBatchID annotates context with the ingestion batch identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, batchIDKey, id)
}

// BatchIDFromContext extracts the batch identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(batchIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSubmissionIndex annotates context with the submission's position in its batch.
func WithSubmissionIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, submissionIndexKey, index)
}

// SubmissionIndexFromContext extracts the submission index if present.
func SubmissionIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(submissionIndexKey).(int)
	return v, ok
}

// WithEntityKind annotates context with the entity kind currently being resolved.
func WithEntityKind(ctx context.Context, kind string) context.Context {
	if kind == "" {
		return ctx
	}
	return context.WithValue(ctx, entityKindKey, kind)
}

// EntityKindFromContext returns the entity kind if present.
func EntityKindFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(entityKindKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
