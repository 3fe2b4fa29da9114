// Package sizelimit registers the request body size policy on the
// application registry as a Singleton: built once, cached, and shared by
// every request for the life of the process.
package sizelimit

import (
	"context"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/config"
	"github.com/vk/servekit/internal/registry"
)

// Module implements registry.Module for the body size policy.
type Module struct {
	limit bodylimit.SizeLimit
}

// FromConfig captures the operator-configured policy at wiring time.
func FromConfig(model *config.Model) *Module {
	return &Module{limit: model.BodyLimit}
}

// Register binds the policy constructor under the Singleton lifecycle. The
// constructor only returns the captured configuration value, so every
// resolution observes the same policy.
func (m *Module) Register(r *registry.Registry) error {
	limit := m.limit
	return registry.Provide(r, registry.Singleton,
		func(context.Context, registry.Resolver) (bodylimit.SizeLimit, error) {
			return limit, nil
		})
}
