package config

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/servekit/internal/bodylimit"
	"github.com/vk/servekit/internal/ctxlog"
)

// fileRoot decodes the top-level blocks of a configuration file.
type fileRoot struct {
	Server *serverBlock `hcl:"server,block"`
	Log    *logBlock    `hcl:"log,block"`
	Remain hcl.Body     `hcl:",remain"`
}

type serverBlock struct {
	ListenAddr         *string         `hcl:"listen_addr,optional"`
	CORSAllowedOrigins []string        `hcl:"cors_allowed_origins,optional"`
	BodyLimit          *bodyLimitBlock `hcl:"body_limit,block"`
}

type bodyLimitBlock struct {
	Disabled *bool `hcl:"disabled,optional"`
	// MaxBytes is kept as a raw expression so operators may write either a
	// plain byte count or a string with a unit suffix ("10MiB").
	MaxBytes hcl.Expression `hcl:"max_bytes,optional"`
}

type logBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// Load reads the configuration file at path and merges it over Defaults.
// An empty path returns Defaults unchanged; a path that does not exist is
// an operator error and fails.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := Defaults()

	if path == "" {
		logger.Debug("No configuration file provided, using defaults.")
		return model, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config: cannot access %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, diags)
	}

	if err := mergeServer(model, root.Server); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	mergeLog(model, root.Log)

	if err := validate(model); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	logger.Debug("Configuration loaded.",
		"path", path,
		"listen_addr", model.ListenAddr,
		"body_limit", model.BodyLimit.String(),
	)
	return model, nil
}

func mergeServer(model *Model, block *serverBlock) error {
	if block == nil {
		return nil
	}
	if block.ListenAddr != nil {
		model.ListenAddr = *block.ListenAddr
	}
	if block.CORSAllowedOrigins != nil {
		model.CORSAllowedOrigins = block.CORSAllowedOrigins
	}
	return mergeBodyLimit(model, block.BodyLimit)
}

func mergeBodyLimit(model *Model, block *bodyLimitBlock) error {
	if block == nil {
		return nil
	}
	if block.Disabled != nil && *block.Disabled {
		model.BodyLimit = bodylimit.Disabled()
		return nil
	}
	maxBytes := model.BodyLimit.MaxBytes
	if maxBytes == 0 {
		maxBytes = bodylimit.DefaultMaxBytes
	}
	if block.MaxBytes != nil {
		n, present, err := evalSize(block.MaxBytes)
		if err != nil {
			return fmt.Errorf("body_limit.max_bytes: %w", err)
		}
		if present {
			maxBytes = n
		}
	}
	model.BodyLimit = bodylimit.Enabled(maxBytes)
	return nil
}

func mergeLog(model *Model, block *logBlock) {
	if block == nil {
		return
	}
	if block.Level != nil {
		model.LogLevel = *block.Level
	}
	if block.Format != nil {
		model.LogFormat = *block.Format
	}
}

func validate(model *Model) error {
	if model.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}
	if model.BodyLimit.Enabled && model.BodyLimit.MaxBytes <= 0 {
		return fmt.Errorf("body_limit.max_bytes must be positive, got %d", model.BodyLimit.MaxBytes)
	}
	switch model.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", model.LogLevel)
	}
	switch model.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", model.LogFormat)
	}
	return nil
}
