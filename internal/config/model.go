// Package config loads the application configuration from HCL files and
// merges it with defaults. The model it produces is plain Go data; the HCL
// machinery stays inside the loader.
package config

import "github.com/vk/servekit/internal/bodylimit"

// Model is the unified representation of the application configuration.
type Model struct {
	ListenAddr         string
	CORSAllowedOrigins []string
	BodyLimit          bodylimit.SizeLimit
	LogLevel           string
	LogFormat          string
}

// Defaults returns the configuration used when no file (or an empty file)
// is provided: listen on :8080, enforce the 10 MiB body ceiling, JSON logs
// at info level.
func Defaults() *Model {
	return &Model{
		ListenAddr: ":8080",
		BodyLimit:  bodylimit.Default(),
		LogLevel:   "info",
		LogFormat:  "json",
	}
}
