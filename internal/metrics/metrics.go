// Package metrics exposes prometheus instrumentation for the HTTP surface:
// request totals by status code, rejected-body counts, and a request body
// size distribution.
package metrics

import (
	"net/http"
	"strconv"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the collectors with the private prometheus registry they are
// registered on. Each App owns its own Set, so tests never trip over the
// global default registry.
type Set struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	BodyRejectedTotal prometheus.Counter
	RequestBodyBytes  prometheus.Histogram
}

// New creates a Set with all collectors registered.
func New() *Set {
	reg := prometheus.NewRegistry()
	s := &Set{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servekit_http_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		BodyRejectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "servekit_http_body_rejected_total",
			Help: "Requests rejected because the body exceeded the size limit.",
		}),
		RequestBodyBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "servekit_http_request_body_bytes",
			Help:    "Declared request body sizes in bytes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		s.RequestsTotal,
		s.BodyRejectedTotal,
		s.RequestBodyBytes,
	)
	return s
}

// Handler serves the scrape endpoint for this Set.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Middleware records per-request metrics. It observes declared body sizes
// before the handler runs and counts 413 responses as rejected bodies.
func (s *Set) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			s.RequestBodyBytes.Observe(float64(r.ContentLength))
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
		if ww.Status() == http.StatusRequestEntityTooLarge {
			s.BodyRejectedTotal.Inc()
		}
	})
}

// Gather exposes the underlying registry for tests.
func (s *Set) Gather() prometheus.Gatherer {
	return s.registry
}
