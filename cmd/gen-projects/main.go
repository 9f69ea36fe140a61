// Command gen-projects generates synthetic project snapshots, submits them
// to a running loadwatch service and verifies the usage it reports.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/loadwatch/internal/projectgen"
	"github.com/okian/loadwatch/pkg/logger"
)

// Default configuration constants.
const (
	defaultProjects  = 200
	defaultResources = 12
	defaultTasks     = 150
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultRunTime   = 10 * time.Minute
)

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the service")
		projects  = flag.Int("projects", defaultProjects, "Number of projects to generate and submit")
		resources = flag.Int("resources", defaultResources, "Resources per project")
		tasks     = flag.Int("tasks", defaultTasks, "Tasks per project")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Generator seed")
		outputDir = flag.String("out", "", "Directory to save generated snapshots as YAML")
		logFormat = flag.String("log-format", logger.FormatText, "Log format (text or json)")
		verbose   = flag.Bool("verbose", false, "Log every usage mismatch")
	)
	flag.Parse()

	if err := logger.Init(logger.WithFormat(*logFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	cfg := &projectgen.Config{
		BaseURL:   *baseURL,
		Projects:  *projects,
		Resources: *resources,
		Tasks:     *tasks,
		Workers:   *workers,
		Timeout:   *timeout,
		Seed:      *seed,
		OutputDir: *outputDir,
		Verbose:   *verbose,
	}

	if _, err := projectgen.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "run failed", logger.Error(err), logger.Any("seed", *seed))
		cancel()
		os.Exit(1)
	}
}
