package httpserver

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vk/servekit/internal/ctxlog"
	"github.com/vk/servekit/internal/registry"
	"github.com/vk/servekit/modules/reqmeta"
)

// scopeMiddleware opens a registry scope for each request and closes it
// when the request ends, so Scoped values live exactly as long as the
// request that built them.
func scopeMiddleware(reg *registry.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := reg.NewScope()
			defer scope.Close()
			ctx := registry.WithScope(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger resolves the request metadata from the scope, stamps the
// response with the request id, embeds a per-request logger in the
// context, and records the outcome once the handler returns.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			reqLogger := logger
			var info *reqmeta.Info
			if scope := registry.ScopeFromContext(ctx); scope != nil {
				var err error
				info, err = registry.Resolve[*reqmeta.Info](ctx, scope)
				if err == nil {
					reqLogger = logger.With("request_id", info.RequestID)
					w.Header().Set("X-Request-Id", info.RequestID)
				} else {
					logger.Warn("Failed to resolve request metadata.", "error", err)
				}
			}

			ctx = ctxlog.WithLogger(ctx, reqLogger)
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes_written", ww.BytesWritten(),
			}
			if info != nil {
				attrs = append(attrs, "duration", info.Elapsed())
			}
			reqLogger.Info("Request served.", attrs...)
		})
	}
}
