// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/loadwatch/internal/adapters/cache"
	"github.com/okian/loadwatch/internal/adapters/mq/queue"
	"github.com/okian/loadwatch/internal/adapters/mq/worker"
	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/labels"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/pkg/logger"
	"github.com/okian/loadwatch/pkg/metrics"
)

// Service implements the API dependencies for the workload system.
type Service struct {
	mu sync.RWMutex

	store      repository.Store
	memo       cache.Cache
	queue      *queue.InMemoryQueue
	pool       *worker.Pool
	engine     *workload.Engine
	translator labels.Translator

	workerCount    int
	queueSize      int
	cacheSize      int
	boundary       sweep.Boundary
	labelOverrides map[string]string

	started bool

	logger logger.Logger
}

// New constructs a Service. The store and cache live for the lifetime of
// the Service; the queue and workers are created by Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		cacheSize:   1_024,
		boundary:    sweep.BoundaryInclusive,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.memo = cache.NewMemoryCache(cache.WithMaxSize(s.cacheSize), cache.WithGuard(s.current))
	s.engine = workload.New(workload.WithBoundary(s.boundary))
	s.translator = labels.Default().WithOverrides(s.labelOverrides).Translator()
	return s
}

// Start creates the recompute queue and starts the workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.store, s.engine, s.memo,
		worker.WithTranslator(s.translator))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "workload service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("cacheSize", s.cacheSize),
		logger.String("boundary", s.boundary.String()),
	)
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping workload service...")

	err := s.pool.Shutdown(ctx)
	s.started = false
	s.pool = nil
	s.queue = nil

	s.logger.Info(ctx, "workload service stopped")
	return err
}

// Boundary returns the sweep boundary rule in use.
func (s *Service) Boundary() sweep.Boundary { return s.boundary }

// Translator returns the configured label translator.
func (s *Service) Translator() labels.Translator { return s.translator }

// Evaluate computes usage for an ad-hoc snapshot without storing it.
func (s *Service) Evaluate(_ context.Context, resources []model.Resource, tasks []model.Task) []model.ResourceUsage {
	return s.compute("evaluate", resources, tasks)
}

// CreateProject stores a new snapshot and schedules its usage computation.
func (s *Service) CreateProject(ctx context.Context, p model.Project) (model.Project, error) {
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return model.Project{}, err
	}
	s.schedule(ctx, created)
	return created, nil
}

// PutProject replaces a snapshot and schedules its usage computation.
func (s *Service) PutProject(ctx context.Context, p model.Project) (model.Project, error) {
	updated, err := s.store.Put(ctx, p)
	if err != nil {
		return model.Project{}, err
	}
	s.schedule(ctx, updated)
	return updated, nil
}

// GetProject returns a stored snapshot.
func (s *Service) GetProject(ctx context.Context, id string) (model.Project, error) {
	return s.store.Get(ctx, id)
}

// DeleteProject removes a snapshot and its cached usage.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.memo.Invalidate(ctx, id)
	return nil
}

// ListProjects returns the stored projects.
func (s *Service) ListProjects(ctx context.Context) []repository.Info {
	return s.store.List(ctx)
}

// Usage returns the usage of the current revision of a project, computing
// it on demand when the workers have not cached it yet.
func (s *Service) Usage(ctx context.Context, id string) (workload.Report, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return workload.Report{}, err
	}

	usage, ok := s.memo.Get(ctx, p.ID, p.Revision)
	if !ok {
		usage = s.compute("read", p.Resources, p.Tasks)
		s.memo.Put(ctx, p.ID, p.Revision, usage)
	}

	return workload.Report{
		ProjectID: p.ID,
		Revision:  p.Revision,
		Boundary:  s.boundary.String(),
		Summary:   workload.Summarize(usage),
		Resources: usage,
	}, nil
}

// ResourceUsage returns the usage record of one resource of a project.
func (s *Service) ResourceUsage(ctx context.Context, projectID string, resourceID model.ID) (model.ResourceUsage, error) {
	report, err := s.Usage(ctx, projectID)
	if err != nil {
		return model.ResourceUsage{}, err
	}
	for _, u := range report.Resources {
		if u.ResourceID == resourceID {
			return u, nil
		}
	}
	return model.ResourceUsage{}, fmt.Errorf("%w: %s", ErrResourceNotFound, resourceID)
}

// current reports whether revision is still the stored revision of the
// project. Usage computed for a deleted or replaced snapshot is not cached.
func (s *Service) current(ctx context.Context, projectID string, revision uint64) bool {
	p, err := s.store.Get(context.WithoutCancel(ctx), projectID)
	return err == nil && p.Revision == revision
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"cacheSize":   s.cacheSize,
		"boundary":    s.boundary.String(),
		"projects":    s.store.Count(ctx),
		"cached":      s.memo.Size(),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	return stats
}

func (s *Service) compute(origin string, resources []model.Resource, tasks []model.Task) []model.ResourceUsage {
	start := time.Now()
	usage := s.engine.Compute(resources, tasks, s.translator)
	sum := workload.Summarize(usage)
	metrics.RecordComputation(origin, float64(time.Since(start).Microseconds())/1000, sum.Resources, sum.Overloaded, sum.Distributed)
	return usage
}

// schedule asks the workers to precompute usage. A full queue is not an
// error: Usage computes on demand.
func (s *Service) schedule(ctx context.Context, p model.Project) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return
	}
	if err := s.queue.Enqueue(ctx, queue.Request{ProjectID: p.ID, Revision: p.Revision}); err != nil {
		s.logger.Warn(ctx, "recompute not scheduled",
			logger.String("project", p.ID),
			logger.Any("revision", p.Revision),
			logger.Error(err),
		)
	}
}
