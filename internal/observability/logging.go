// Package observability carries run-scoped logging context.
//
// The pipeline stores the run id and current stage in the context; the
// *Context helpers prepend them to every record so concurrent watch-mode
// runs can be told apart in the log stream.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/litgen/internal/logfields"
)

// LogContext holds structured logging context information.
type LogContext struct {
	RunID string
	Stage string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	lc := FromContext(ctx)
	lc.RunID = runID
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := FromContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext stored in ctx, or a zero value.
func FromContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func logAttrs(ctx context.Context, attrs []slog.Attr) []slog.Attr {
	lc := FromContext(ctx)
	all := make([]slog.Attr, 0, len(attrs)+2)
	if lc.RunID != "" {
		all = append(all, logfields.RunID(lc.RunID))
	}
	if lc.Stage != "" {
		all = append(all, logfields.Stage(lc.Stage))
	}
	return append(all, attrs...)
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, logAttrs(ctx, attrs)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, logAttrs(ctx, attrs)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, logAttrs(ctx, attrs)...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, logAttrs(ctx, attrs)...)
}
