package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/config"
	"github.com/vk/servekit/internal/ctxlog"
	"github.com/vk/servekit/internal/httpserver"
	"github.com/vk/servekit/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: the logger, the built registry, and the HTTP server.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	server   *httpserver.Server
}

// New constructs a fully wired App. Configuration is loaded, flag
// overrides applied, modules registered, and the registry frozen before
// this returns. Startup failures here are wiring or operator errors, so
// New panics; main recovers and turns the panic into a clean exit.
func New(outW io.Writer, appConfig *Config, modules ...registry.Module) *App {
	ctx := context.Background()

	model, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	applyOverrides(model, appConfig)

	logger := newLogger(model.LogLevel, model.LogFormat, outW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(model)
	}
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			// A registration failure is a programmer error (duplicate or nil
			// constructor), so fail fast before serving anything.
			panic(fmt.Errorf("module registration failed: %w", err))
		}
	}
	logger.Debug("All modules registered.", "count", len(modules))

	if err := reg.Build(); err != nil {
		panic(err)
	}
	logger.Debug("Registry built and frozen.", "keys", len(reg.Keys()))

	server, err := httpserver.New(logger, model, reg)
	if err != nil {
		panic(err)
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		server:   server,
	}
}

// applyOverrides layers command-line flags over the file configuration.
func applyOverrides(model *config.Model, appConfig *Config) {
	if appConfig.ListenAddr != "" {
		model.ListenAddr = appConfig.ListenAddr
	}
	if appConfig.LogLevel != "" {
		model.LogLevel = appConfig.LogLevel
	}
	if appConfig.LogFormat != "" {
		model.LogFormat = appConfig.LogFormat
	}
	if appConfig.DisableBodyLimit {
		model.BodyLimit = bodylimit.Disabled()
	} else if appConfig.MaxBodyBytes > 0 {
		model.BodyLimit = bodylimit.Enabled(appConfig.MaxBodyBytes)
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the effective configuration after overrides. This is
// primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Server returns the wired HTTP server. This is primarily for testing.
func (a *App) Server() *httpserver.Server {
	return a.server
}
