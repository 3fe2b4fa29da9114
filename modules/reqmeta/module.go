// Package reqmeta provides per-request metadata under the Scoped lifecycle:
// one Info per request scope, rebuilt for every new scope, released when
// the scope closes.
package reqmeta

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vk/servekit/internal/registry"
)

// Info carries the identity and timing of one in-flight request.
type Info struct {
	RequestID string
	Start     time.Time
}

// Elapsed returns the time since the request entered the server.
func (i *Info) Elapsed() time.Duration {
	return time.Since(i.Start)
}

// Module implements registry.Module for request metadata.
type Module struct{}

// Register binds the Info constructor under the Scoped lifecycle. The
// first resolution inside a request scope mints the id and timestamp;
// later resolutions in the same scope see the identical instance.
func (m *Module) Register(r *registry.Registry) error {
	return registry.Provide(r, registry.Scoped,
		func(context.Context, registry.Resolver) (*Info, error) {
			return &Info{
				RequestID: uuid.NewString(),
				Start:     time.Now(),
			}, nil
		})
}
