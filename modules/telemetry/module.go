// Package telemetry registers the prometheus metric set on the application
// registry so handlers and middleware resolve the same collectors the
// scrape endpoint serves.
package telemetry

import (
	"github.com/vk/servekit/internal/metrics"
	"github.com/vk/servekit/internal/registry"
)

// Module implements registry.Module for the metric set.
type Module struct {
	set *metrics.Set
}

// New creates the module with a fresh metric set.
func New() *Module {
	return &Module{set: metrics.New()}
}

// Register binds the already-built set as a Singleton value.
func (m *Module) Register(r *registry.Registry) error {
	return registry.ProvideValue(r, m.set)
}
