// Package httpserver owns the HTTP surface of the application: the chi
// router, the middleware chain, and the server lifecycle. It is the
// collaborator that actually enforces the body size policy the registry
// serves.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/config"
	"github.com/vk/servekit/internal/metrics"
	"github.com/vk/servekit/internal/registry"
)

// shutdownTimeout bounds how long in-flight requests may delay shutdown.
const shutdownTimeout = 5 * time.Second

// Server wires the router to the registry and runs the http.Server.
type Server struct {
	logger     *slog.Logger
	registry   *registry.Registry
	metrics    *metrics.Set
	httpServer *http.Server
	router     chi.Router
}

// New builds the server against a built registry. The metric set is
// resolved from the registry, so a missing telemetry module is a wiring
// defect surfaced at startup rather than at scrape time.
func New(logger *slog.Logger, model *config.Model, reg *registry.Registry) (*Server, error) {
	set, err := registry.Resolve[*metrics.Set](context.Background(), reg)
	if err != nil {
		return nil, fmt.Errorf("httpserver: resolving metric set: %w", err)
	}

	s := &Server{
		logger:   logger,
		registry: reg,
		metrics:  set,
	}

	r := chi.NewRouter()
	r.Use(scopeMiddleware(reg))
	r.Use(requestLogger(logger))
	if len(model.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: model.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		}))
	}
	r.Use(set.Middleware)

	// The enforcement middleware lives on a route group rather than the
	// whole router, so sibling groups can mount their own Override +
	// Middleware pair with a different ceiling.
	r.Group(func(gr chi.Router) {
		gr.Use(bodylimit.Middleware(reg))
		gr.Get("/health", s.handleHealth)
		gr.Post("/upload", s.handleUpload)
		gr.Post("/echo", s.handleEcho)
	})
	r.Method(http.MethodGet, "/metrics", set.Handler())

	s.router = r
	s.httpServer = &http.Server{
		Addr:    model.ListenAddr,
		Handler: r,
	}
	return s, nil
}

// Handler exposes the assembled handler chain, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the chi router so embedders can mount route groups with
// their own body limit overrides next to the built-in routes.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe runs the server until Shutdown or a listener error. A
// graceful shutdown is not reported as an error.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests, bounded by shutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	s.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
