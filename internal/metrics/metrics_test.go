package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	t.Parallel()
	s := New()
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}

	got := testutil.ToFloat64(s.RequestsTotal.WithLabelValues(http.MethodGet, "200"))
	assert.Equal(t, 3.0, got)
}

func TestMiddlewareCountsRejectedBodies(t *testing.T) {
	t.Parallel()
	s := New()
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x")))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.BodyRejectedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.RequestsTotal.WithLabelValues(http.MethodPost, "413")))
}

func TestHandlerServesScrape(t *testing.T) {
	t.Parallel()
	s := New()
	s.BodyRejectedTotal.Inc()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "servekit_http_body_rejected_total 1")
}
