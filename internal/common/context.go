package common

import (
	"context"

	"github.com/google/uuid"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID  contextKey = "run_id"
	ContextKeyFileID contextKey = "file_id"
)

// WithRunID adds a batch run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// NewRunContext tags ctx with a fresh run ID and returns both.
func NewRunContext(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithRunID(ctx, id), id
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithFileID adds the invoice file ID being processed to the context
func WithFileID(ctx context.Context, fileID uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyFileID, fileID)
}

// FileIDFromContext extracts the file ID from context
func FileIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyFileID).(uuid.UUID)
	return id, ok
}
