package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

// ContextKey holds the request-scoped logger.
const ContextKey ctxKey = "logger"

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	l := From(ctx).With(fields...)
	return context.WithValue(ctx, ContextKey, l)
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ContextKey).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
