package app

import (
	"github.com/vk/servekit/internal/config"
	"github.com/vk/servekit/internal/registry"
	"github.com/vk/servekit/modules/reqmeta"
	"github.com/vk/servekit/modules/sizelimit"
	"github.com/vk/servekit/modules/telemetry"
)

// coreModules is the definitive list of modules compiled into the servekit
// binary. The body size policy module is built from the loaded
// configuration; the others carry no configuration of their own.
func coreModules(model *config.Model) []registry.Module {
	return []registry.Module{
		sizelimit.FromConfig(model),
		&reqmeta.Module{},
		telemetry.New(),
	}
}
