package projectgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/projectfile"
	"github.com/okian/loadwatch/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
)

// result is the outcome of one project round trip.
type result struct {
	project    model.Project
	err        error
	diffs      []string
	resources  int
	overloaded int
}

// Run executes a complete generate, submit and verify cycle. It returns
// ErrMismatch when any reported usage differs from the local computation.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("projectgen")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting project generation run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("projects", config.Projects),
		logger.Int("resources", config.Resources),
		logger.Int("tasks", config.Tasks),
		logger.Int("workers", config.Workers),
		logger.Any("seed", config.Seed),
	)

	client := NewClient(config.BaseURL, config.Timeout)
	if err := client.Health(ctx); err != nil {
		return nil, errors.Join(ErrUnhealthy, err)
	}

	gen := NewGenerator(config.Seed, config.Resources, config.Tasks)
	projects := make([]model.Project, config.Projects)
	for i := range projects {
		projects[i] = gen.Project(i)
	}
	stats.Generated = len(projects)

	if config.OutputDir != "" {
		if err := saveProjects(config.OutputDir, projects); err != nil {
			log.Warn(ctx, "failed to save generated projects", logger.Error(err))
		}
	}

	results := roundTrip(ctx, client, config.Workers, projects)

	var failures []error
	for r := range results {
		stats.Submitted++
		if r.err != nil {
			stats.Failed++
			failures = append(failures, r.err)
			continue
		}
		stats.Resources += r.resources
		stats.Overloaded += r.overloaded
		if len(r.diffs) == 0 {
			stats.Verified++
			continue
		}
		stats.Mismatched++
		if config.Verbose {
			for _, d := range r.diffs {
				log.Warn(ctx, "usage mismatch", logger.String("project", r.project.ID), logger.String("diff", d))
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("run cancelled: %w", err)
	}
	if len(failures) > 0 {
		return stats, fmt.Errorf("%d of %d projects failed: %w", stats.Failed, stats.Submitted, errors.Join(failures...))
	}
	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%w: %d of %d projects", ErrMismatch, stats.Mismatched, stats.Submitted)
	}
	return stats, nil
}

// roundTrip submits projects with a pool of workers, reads their usage back
// and verifies it. The returned channel closes when all workers are done.
func roundTrip(ctx context.Context, client *Client, workers int, projects []model.Project) <-chan result {
	jobs := make(chan model.Project, workers*2)
	out := make(chan result, workers*2)

	var wg sync.WaitGroup
	for range min(workers, len(projects)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				out <- check(ctx, client, p)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range projects {
			select {
			case <-ctx.Done():
				return
			case jobs <- p:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func check(ctx context.Context, client *Client, p model.Project) result {
	res := result{project: p}
	created, err := client.CreateProject(ctx, p)
	if err != nil {
		res.err = fmt.Errorf("create %s: %w", p.ID, err)
		return res
	}
	report, err := client.Usage(ctx, created.ID)
	if err != nil {
		res.err = fmt.Errorf("usage %s: %w", created.ID, err)
		return res
	}
	diffs, err := Verify(p, report)
	if err != nil {
		res.err = fmt.Errorf("verify %s: %w", created.ID, err)
		return res
	}
	res.diffs = diffs
	res.resources = report.Summary.Resources
	res.overloaded = report.Summary.Overloaded
	return res
}

func saveProjects(dir string, projects []model.Project) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, p := range projects {
		if err := projectfile.Save(filepath.Join(dir, p.ID+".yaml"), p); err != nil {
			return err
		}
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Int("resources", stats.Resources),
		logger.Int("overloaded", stats.Overloaded),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("projectsPerSecond", perSecond),
	)
}
