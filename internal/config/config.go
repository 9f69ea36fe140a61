// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Validation failures wrap ErrInvalidConfig, load failures wrap ErrLoadConfig.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/loadwatch/internal/domain/sweep"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory recompute queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recompute workers.
	WorkerCount int `koanf:"worker_count"`

	// CacheSize caps the number of memoized usage results.
	CacheSize int `koanf:"cache_size"`

	// BoundaryMode decides whether tasks that end and start on the same
	// instant overlap: inclusive or exclusive.
	BoundaryMode string `koanf:"boundary_mode"`

	// MaxRequestBytes caps request bodies accepted by the API.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`

	// Labels overrides the built-in label texts by key.
	Labels map[string]string `koanf:"labels"`

	// SeedFile is an optional project snapshot loaded at start.
	SeedFile string `koanf:"seed_file"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU(),
		CacheSize:       1_024,
		BoundaryMode:    sweep.BoundaryInclusive.String(),
		MaxRequestBytes: 8 << 20,
	}
}

// Boundary returns the parsed boundary mode.
func (c *Config) Boundary() (sweep.Boundary, error) {
	b, err := sweep.ParseBoundary(c.BoundaryMode)
	if err != nil {
		return b, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return b, nil
}

// Validate checks the fields the service cannot run without.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if _, err := c.Boundary(); err != nil {
		return err
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("%w: max_request_bytes must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
