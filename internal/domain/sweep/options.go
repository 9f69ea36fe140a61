package sweep

import (
	"errors"
	"fmt"
	"strings"
)

// Boundary decides whether a task ending at instant t and a task starting at
// t are simultaneously active at t.
type Boundary int

const (
	// BoundaryInclusive treats end dates as occupied: back-to-back tasks that
	// share a boundary day overlap on that day.
	BoundaryInclusive Boundary = iota
	// BoundaryExclusive frees the resource at the end instant, so a task may
	// start exactly when another ends without overlapping it.
	BoundaryExclusive
)

// ErrUnknownBoundary is returned by ParseBoundary.
var ErrUnknownBoundary = errors.New("unknown boundary mode")

// String returns the config spelling of the mode.
func (b Boundary) String() string {
	switch b {
	case BoundaryExclusive:
		return "exclusive"
	default:
		return "inclusive"
	}
}

// ParseBoundary accepts "inclusive" or "exclusive", case-insensitive. An
// empty string selects the default inclusive mode.
func ParseBoundary(s string) (Boundary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inclusive":
		return BoundaryInclusive, nil
	case "exclusive":
		return BoundaryExclusive, nil
	default:
		return BoundaryInclusive, fmt.Errorf("%w: %q", ErrUnknownBoundary, s)
	}
}

type options struct {
	boundary Boundary
}

// Option configures a sweep.
type Option func(*options)

// WithBoundary selects how coinciding end and start instants are ordered.
func WithBoundary(b Boundary) Option {
	return func(o *options) {
		o.boundary = b
	}
}

func newOptions(opts ...Option) options {
	o := options{boundary: BoundaryInclusive}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
