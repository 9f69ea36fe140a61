package service

import (
	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/okian/loadwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recompute workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the recompute queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithCacheSize sets how many projects keep memoized usage. Zero or less
// disables the bound.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithBoundary sets the sweep boundary rule.
func WithBoundary(b sweep.Boundary) Option {
	return func(s *Service) {
		s.boundary = b
	}
}

// WithLabels overrides label texts by key.
func WithLabels(overrides map[string]string) Option {
	return func(s *Service) {
		s.labelOverrides = overrides
	}
}

// WithStore replaces the in-memory project store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
