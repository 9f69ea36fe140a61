package cache

import "context"

// Option applies a configuration option to the memory cache.
type Option func(*memoryCache)

// WithMaxSize sets the maximum number of projects to keep.
// If maxSize > 0: bounded, oldest stored project is evicted first.
// If maxSize <= 0: unbounded.
func WithMaxSize(maxSize int) Option {
	return func(c *memoryCache) {
		c.maxSize = maxSize
	}
}

// Guard reports whether usage for a project revision may still be stored.
// It runs under the cache lock.
type Guard func(ctx context.Context, projectID string, revision uint64) bool

// WithGuard rejects Puts for revisions the guard no longer accepts.
func WithGuard(g Guard) Option {
	return func(c *memoryCache) {
		c.guard = g
	}
}
