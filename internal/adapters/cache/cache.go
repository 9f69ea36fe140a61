// Package cache memoizes computed usage per project revision.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/pkg/metrics"
)

// Cache holds the usage of the latest computed revision of each project.
type Cache interface {
	// Get returns the usage computed for exactly this revision.
	Get(ctx context.Context, projectID string, revision uint64) ([]model.ResourceUsage, bool)
	// Put stores usage for a revision. Older revisions than the one held,
	// and revisions the configured Guard rejects, are ignored; newer ones
	// replace it.
	Put(ctx context.Context, projectID string, revision uint64, usage []model.ResourceUsage)
	// Invalidate drops whatever is held for the project.
	Invalidate(ctx context.Context, projectID string)

	Size() int64
}

// node is an entry in the insertion-ordered list.
type node struct {
	project  string
	revision uint64
	usage    []model.ResourceUsage
	prev     *node
	next     *node
}

func (n *node) reset() {
	*n = node{}
}

// memoryCache evicts the oldest inserted project once maxSize is reached.
// maxSize <= 0 disables eviction.
type memoryCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // most recently stored
	tail     *node // oldest
	maxSize  int
	guard    Guard
	size     atomic.Int64
	nodePool sync.Pool
}

// NewMemoryCache creates a cache.
func NewMemoryCache(opts ...Option) Cache {
	c := &memoryCache{
		maxSize: 1024,
		entries: make(map[string]*node),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.nodePool.New = func() any { return &node{} }
	return c
}

func (c *memoryCache) Get(_ context.Context, projectID string, revision uint64) ([]model.ResourceUsage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[projectID]
	if !ok || n.revision != revision {
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return n.usage, true
}

func (c *memoryCache) Put(ctx context.Context, projectID string, revision uint64, usage []model.ResourceUsage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.guard != nil && !c.guard(ctx, projectID, revision) {
		return
	}

	if n, ok := c.entries[projectID]; ok {
		if revision < n.revision {
			return
		}
		n.revision = revision
		n.usage = usage
		c.unlink(n)
		c.pushFront(n)
		return
	}

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.project = projectID
	n.revision = revision
	n.usage = usage
	c.pushFront(n)
	c.entries[projectID] = n
	metrics.UpdateCacheSize(int(c.size.Add(1)))
}

func (c *memoryCache) Invalidate(_ context.Context, projectID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[projectID]; ok {
		c.remove(n)
	}
}

func (c *memoryCache) Size() int64 {
	return c.size.Load()
}

// evictOldest drops the tail. Caller holds c.mu.
func (c *memoryCache) evictOldest() {
	if c.tail == nil {
		return
	}
	c.remove(c.tail)
	metrics.RecordCacheEviction()
}

// remove unlinks n, forgets it and returns it to the pool. Caller holds c.mu.
func (c *memoryCache) remove(n *node) {
	c.unlink(n)
	delete(c.entries, n.project)
	n.reset()
	c.nodePool.Put(n)
	metrics.UpdateCacheSize(int(c.size.Add(-1)))
}

func (c *memoryCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *memoryCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
