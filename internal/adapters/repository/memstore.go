package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/pkg/metrics"
)

// MemoryStore is an in-memory Store. Writes take the lock and republish
// the listing index; List reads the published index without locking.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]model.Project
	// last is the highest revision each id has reached, kept across
	// deletes so a re-created project never reuses a revision.
	last map[string]uint64

	// index is the sorted listing, republished after every write.
	index atomic.Pointer[[]Info]

	newID func() string
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		projects: make(map[string]model.Project),
		last:     make(map[string]uint64),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.publish()
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, p model.Project) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	if err := validate(p); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = s.newID()
	}
	if _, ok := s.projects[p.ID]; ok {
		metrics.RecordErrorByComponent("repository", "conflict")
		return model.Project{}, fmt.Errorf("%w: %s", ErrConflict, p.ID)
	}
	p.Revision = s.last[p.ID] + 1
	s.store(p)
	return s.projects[p.ID], nil
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, p model.Project) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	if err := validate(p); err != nil {
		return model.Project{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.projects[p.ID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	p.Revision = prev.Revision + 1
	s.store(p)
	return s.projects[p.ID], nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	s.mu.RLock()
	p, ok := s.projects[id]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Project{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.projects, id)
	s.publish()
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context) []Info {
	return slices.Clone(*s.index.Load())
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) int {
	return len(*s.index.Load())
}

// store saves p with cloned slices. Caller holds the write lock.
func (s *MemoryStore) store(p model.Project) {
	s.last[p.ID] = p.Revision
	p.UpdatedAt = s.now().UTC()
	p.Resources = slices.Clone(p.Resources)
	p.Tasks = slices.Clone(p.Tasks)
	s.projects[p.ID] = p
	s.publish()
}

// publish rebuilds the listing index. Caller holds the write lock.
func (s *MemoryStore) publish() {
	idx := make([]Info, 0, len(s.projects))
	for _, p := range s.projects {
		idx = append(idx, Info{
			ID:        p.ID,
			Name:      p.Name,
			Revision:  p.Revision,
			Resources: len(p.Resources),
			Tasks:     len(p.Tasks),
			UpdatedAt: p.UpdatedAt,
		})
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i].ID < idx[j].ID })
	s.index.Store(&idx)
	metrics.UpdateProjectsStored(len(idx))
}

// validate rejects snapshots whose resources cannot be told apart. Unit and
// date values are not checked.
func validate(p model.Project) error {
	seen := make(map[model.ID]struct{}, len(p.Resources))
	for i, r := range p.Resources {
		if r.ID == "" {
			return fmt.Errorf("%w: resource %d has no id", ErrInvalidProject, i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate resource id %q", ErrInvalidProject, r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}
