package app

import "errors"

// Config carries the command-line level configuration for an App instance.
// Empty string and zero values mean "not set": the configuration file and
// built-in defaults fill the gaps.
type Config struct {
	ConfigPath string

	ListenAddr string
	LogFormat  string
	LogLevel   string

	// MaxBodyBytes overrides the configured body size ceiling when > 0.
	MaxBodyBytes int64
	// DisableBodyLimit switches body size enforcement off entirely.
	DisableBodyLimit bool
}

// NewConfig validates a Config for internal consistency.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.MaxBodyBytes < 0 {
		return nil, errors.New("max body bytes must not be negative")
	}
	if cfg.MaxBodyBytes > 0 && cfg.DisableBodyLimit {
		return nil, errors.New("a body size ceiling and disabling the body limit are mutually exclusive")
	}
	return &cfg, nil
}
