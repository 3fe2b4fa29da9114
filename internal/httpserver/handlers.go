package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/ctxlog"
	"github.com/vk/servekit/internal/registry"
	"github.com/vk/servekit/modules/reqmeta"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctxlog.FromContext(r.Context()).Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// uploadResponse is the JSON body returned by handleUpload.
type uploadResponse struct {
	RequestID     string `json:"request_id,omitempty"`
	ReceivedBytes int    `json:"received_bytes"`
}

// handleUpload buffers the request body under the active policy and
// reports how many bytes arrived. It is the reference consumer of the
// enforcement contract: the middleware already capped the stream, and
// ReadAll turns the cap into ErrTooLarge.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		return
	}

	resp := uploadResponse{ReceivedBytes: len(data)}
	if scope := registry.ScopeFromContext(r.Context()); scope != nil {
		if info, err := registry.Resolve[*reqmeta.Info](r.Context(), scope); err == nil {
			resp.RequestID = info.RequestID
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to encode upload response.", "error", err)
	}
}

// handleEcho buffers the body under the active policy and writes it back.
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to write echo response.", "error", err)
	}
}

// readBody resolves the active policy, buffers the body, and writes the
// error response itself when the body is oversized or unreadable. A nil
// error means data is complete and within the ceiling.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	logger := ctxlog.FromContext(r.Context())

	limit, err := bodylimit.Active(r.Context(), s.registry)
	if err != nil {
		logger.Error("Failed to resolve body size policy.", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return nil, err
	}

	data, err := bodylimit.ReadAll(r, limit)
	if err != nil {
		if errors.Is(err, bodylimit.ErrTooLarge) {
			logger.Warn("Request body rejected: too large.", "max_bytes", limit.MaxBytes)
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		} else {
			logger.Warn("Failed to read request body.", "error", err)
			http.Error(w, "failed to read request body", http.StatusBadRequest)
		}
		return nil, err
	}
	return data, nil
}
