// Package worker recomputes project usage in the background after snapshot
// writes so reads find it cached.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/loadwatch/internal/adapters/mq/queue"
	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/labels"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/pkg/logger"
	"github.com/okian/loadwatch/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Loader reads project snapshots.
type Loader interface {
	Get(ctx context.Context, id string) (model.Project, error)
}

// Engine computes usage records.
type Engine interface {
	Compute(resources []model.Resource, tasks []model.Task, t labels.Translator) []model.ResourceUsage
}

// Sink receives computed usage.
type Sink interface {
	Put(ctx context.Context, projectID string, revision uint64, usage []model.ResourceUsage)
}

// Queue defines how workers receive requests.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Request
}

// Outcome of processing one request.
type Outcome int

const (
	Computed Outcome = iota
	SkippedStale
	SkippedDeleted
)

// InMemoryWorker drains recompute requests.
type InMemoryWorker struct {
	queue      Queue
	loader     Loader
	engine     Engine
	sink       Sink
	translator labels.Translator
	name       string

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, loader Loader, engine Engine, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      q,
		loader:     loader,
		engine:     engine,
		sink:       sink,
		translator: labels.Default().Translator(),
		name:       "worker",
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes requests until the queue is closed, ctx is cancelled or
// Shutdown is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	requests := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if _, err := w.Process(ctx, req); err != nil {
				w.logger.Error(ctx, "recompute failed",
					logger.String("worker", w.name),
					logger.String("project", req.ProjectID),
					logger.Error(err),
				)
			}
		}
	}
}

// Process handles one request. A request for a revision that has since
// been replaced, or for a deleted project, is skipped.
func (w *InMemoryWorker) Process(ctx context.Context, req queue.Request) (Outcome, error) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	p, err := w.loader.Get(ctx, req.ProjectID)
	if errors.Is(err, repository.ErrNotFound) {
		w.logger.Debug(ctx, "project gone", logger.String("project", req.ProjectID))
		return SkippedDeleted, nil
	}
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "load_error")
		return Computed, fmt.Errorf("load project %s: %w", req.ProjectID, err)
	}
	if p.Revision != req.Revision {
		metrics.RecordWorkerStaleSkip()
		return SkippedStale, nil
	}

	usage := w.engine.Compute(p.Resources, p.Tasks, w.translator)
	w.sink.Put(ctx, p.ID, p.Revision, usage)

	s := workload.Summarize(usage)
	metrics.RecordComputation("worker", float64(time.Since(start).Microseconds())/1000, s.Resources, s.Overloaded, s.Distributed)
	return Computed, nil
}

// Shutdown stops the worker and waits for it.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.once.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a pool. A count below one selects runtime.NumCPU().
func NewPool(workerCount int, q Queue, loader Loader, engine Engine, sink Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, loader, engine, sink, wopts...)
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets the workers drain it. Workers still
// running when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var errs []error
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			if err := w.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	metrics.UpdateWorkerCount(0)
	return errors.Join(errs...)
}
