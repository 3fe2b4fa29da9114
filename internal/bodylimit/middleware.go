package bodylimit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vk/servekit/internal/ctxlog"
	"github.com/vk/servekit/internal/registry"
)

type overrideCtxKey struct{}

// Middleware enforces the body size policy on every request passing through
// it. The policy is resolved from the request's registry scope when one is
// present, or from the root registry otherwise, so a Singleton policy is
// fetched once and cached while a Scoped one is rebuilt per request.
//
// Enforcement is two-staged: a declared Content-Length above the ceiling is
// rejected with 413 before a single body byte is read, and chunked or lying
// clients are stopped by http.MaxBytesReader the moment the ceiling is
// crossed, bounding memory under adversarial input.
func Middleware(root *registry.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limit, err := Active(r.Context(), root)
			if err != nil {
				ctxlog.FromContext(r.Context()).Error("Failed to resolve body size policy.", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if !limit.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit.MaxBytes {
				reject(w, r, limit)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit.MaxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Override returns middleware that replaces the registry-provided policy
// for the routes mounted below it. Route groups with different upload
// ceilings (say, a 1 GiB /upload next to a 10 MiB API surface) mount this
// ahead of Middleware in their own branch.
func Override(limit SizeLimit) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), overrideCtxKey{}, limit)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Active decides which policy governs this request: an Override takes
// precedence, then whatever the registry resolves. Handlers reading the
// body themselves use this so they agree with the middleware on the
// ceiling.
func Active(ctx context.Context, root *registry.Registry) (SizeLimit, error) {
	if l, ok := ctx.Value(overrideCtxKey{}).(SizeLimit); ok {
		return l, nil
	}
	var res registry.Resolver = root
	if scope := registry.ScopeFromContext(ctx); scope != nil {
		res = scope
	}
	return registry.Resolve[SizeLimit](ctx, res)
}

// reject writes the 413 response without consuming the body.
func reject(w http.ResponseWriter, r *http.Request, limit SizeLimit) {
	ctxlog.FromContext(r.Context()).Warn("Request body rejected: too large.",
		"content_length", r.ContentLength,
		"max_bytes", limit.MaxBytes,
		"path", r.URL.Path,
	)
	http.Error(w, fmt.Sprintf("request body exceeds the %d byte limit", limit.MaxBytes), http.StatusRequestEntityTooLarge)
}

// ReadAll buffers the entire request body under the policy. A body of
// exactly MaxBytes is accepted; one byte more returns ErrTooLarge with
// reading stopped at the ceiling rather than buffering the excess. Bodies
// already capped by Middleware surface http.MaxBytesError, which is
// normalized to ErrTooLarge so handlers match one sentinel.
func ReadAll(r *http.Request, limit SizeLimit) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	var src io.Reader = r.Body
	if limit.Enabled {
		// One byte of slack distinguishes "exactly at the ceiling" from over.
		src = io.LimitReader(src, limit.MaxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, fmt.Errorf("%w: ceiling %d bytes", ErrTooLarge, mbe.Limit)
		}
		return nil, err
	}
	if limit.Enabled && int64(len(data)) > limit.MaxBytes {
		return nil, fmt.Errorf("%w: ceiling %d bytes", ErrTooLarge, limit.MaxBytes)
	}
	return data, nil
}
