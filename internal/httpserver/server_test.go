package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/config"
	"github.com/vk/servekit/internal/registry"
	"github.com/vk/servekit/modules/reqmeta"
	"github.com/vk/servekit/modules/sizelimit"
	"github.com/vk/servekit/modules/telemetry"
)

// newTestServer wires a server the same way app startup does, with logs
// discarded.
func newTestServer(t *testing.T, model *config.Model) *Server {
	t.Helper()

	reg := registry.New()
	mods := []registry.Module{
		sizelimit.FromConfig(model),
		&reqmeta.Module{},
		telemetry.New(),
	}
	for _, mod := range mods {
		require.NoError(t, mod.Register(reg))
	}
	require.NoError(t, reg.Build())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(logger, model, reg)
	require.NoError(t, err)
	return srv
}

func testModel(limit bodylimit.SizeLimit) *config.Model {
	model := config.Defaults()
	model.BodyLimit = limit
	return model
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Default()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestUploadWithinLimit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Enabled(1024)))

	body := bytes.Repeat([]byte("a"), 1024)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var resp struct {
		RequestID     string `json:"request_id"`
		ReceivedBytes int    `json:"received_bytes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1024, resp.ReceivedBytes)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), resp.RequestID,
		"the scoped request metadata must be the same instance across middleware and handler")
}

func TestUploadOverLimitRejectedAndCounted(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Enabled(1024)))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 2048))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.BodyRejectedTotal))
}

func TestUploadWithDisabledLimit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Disabled()))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 5<<20))))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"received_bytes":5242880`)
}

func TestEchoRoundTrip(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Default()))

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello there"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello there", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestRequestIDsAreDistinctPerRequest(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Default()))

	ids := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		id := rec.Header().Get("X-Request-Id")
		require.NotEmpty(t, id)
		ids[id] = struct{}{}
	}
	assert.Len(t, ids, 5, "each request scope must mint its own metadata")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Default()))

	// Serve one request first so there is something to scrape.
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "servekit_http_requests_total")
}

func TestRouteGroupOverride(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, testModel(bodylimit.Enabled(64)))

	// A bulk route group raises the ceiling for itself only.
	srv.Router().Route("/bulk", func(r chi.Router) {
		r.Use(bodylimit.Override(bodylimit.Enabled(1 << 20)))
		r.Use(bodylimit.Middleware(srv.registry))
		r.Post("/upload", srv.handleUpload)
	})

	big := bytes.NewReader(make([]byte, 4096))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bulk/upload", big))
	assert.Equal(t, http.StatusOK, rec.Code, "the override must govern the bulk group")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 4096))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, "the default ceiling still governs the rest")
}

func TestCORSHeaders(t *testing.T) {
	t.Parallel()
	model := testModel(bodylimit.Default())
	model.CORSAllowedOrigins = []string{"https://example.com"}
	srv := newTestServer(t, model)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
