// Package projectgen generates synthetic project snapshots, submits them to
// a running service and verifies the usage it reports against a local
// engine run.
package projectgen

import (
	"errors"
	"time"
)

// Config holds configuration for a generation run.
type Config struct {
	BaseURL   string        // Base URL of the service
	Projects  int           // Number of projects to generate
	Resources int           // Resources per project
	Tasks     int           // Tasks per project
	Workers   int           // Number of concurrent submitters
	Timeout   time.Duration // HTTP request timeout
	Seed      uint64        // Generator seed; equal seeds give equal projects
	OutputDir string        // Directory for generated snapshots; empty skips saving
	Verbose   bool          // Log every mismatch
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Failed     int
	Verified   int
	Mismatched int
	Resources  int
	Overloaded int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrUnhealthy     = errors.New("service unhealthy")
	ErrMismatch      = errors.New("usage mismatch")
)

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return errors.Join(ErrInvalidConfig, errors.New("empty base url"))
	case c.Projects <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("projects must be positive"))
	case c.Resources <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("resources must be positive"))
	case c.Tasks < 0:
		return errors.Join(ErrInvalidConfig, errors.New("tasks must not be negative"))
	case c.Workers <= 0:
		return errors.Join(ErrInvalidConfig, errors.New("workers must be positive"))
	}
	return nil
}
