package common

import (
	"context"
	"log/slog"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID   contextKey = "run_id"
	ContextKeyModelID contextKey = "model_id"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

// WithModelID adds a model identifier to the context
func WithModelID(ctx context.Context, modelID string) context.Context {
	return context.WithValue(ctx, ContextKeyModelID, modelID)
}

// ModelIDFromContext extracts the model identifier from context
func ModelIDFromContext(ctx context.Context) string {
	if modelID, ok := ctx.Value(ContextKeyModelID).(string); ok {
		return modelID
	}
	return ""
}

// LoggerFromContext decorates logger with the run and model IDs carried by ctx.
func LoggerFromContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	if id := ModelIDFromContext(ctx); id != "" {
		logger = logger.With("model_id", id)
	}
	return logger
}

// WithTimeout creates a context with the specified timeout. A non-positive
// timeout only adds cancellation.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
