// Package ctxlog carries a slog.Logger through context.Context so that
// request-scoped attributes (request id, scope id) travel with the request
// instead of living on a global logger.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type so context keys from other packages cannot collide.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the slog.Logger from a context. If no logger has been
// embedded it falls back to slog.Default, so callers never receive nil.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
