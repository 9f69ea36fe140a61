// Command loadwatch serves the workload API and renders usage reports for
// project snapshot files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/loadwatch/internal/adapters/http/api"
	"github.com/okian/loadwatch/internal/adapters/http/swagger"
	service "github.com/okian/loadwatch/internal/app"
	"github.com/okian/loadwatch/internal/config"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/internal/projectfile"
	"github.com/okian/loadwatch/internal/report"
	"github.com/okian/loadwatch/pkg/logger"
	"github.com/okian/loadwatch/pkg/metrics"
	"github.com/spf13/cobra"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "loadwatch",
		Short:         "Resource workload and overallocation engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(reportCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the workload HTTP API",
		Long: `Run the workload HTTP API.

Configuration is layered: defaults, then the YAML file named by
LOADWATCH_CONFIG, then LOADWATCH_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			// Apply configured log level (fallback to info on invalid input)
			if err := logger.SetLevelString(cfg.LogLevel); err != nil {
				logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
				_ = logger.SetLevelString("info")
			}
			return runServe(ctx, cfg)
		},
	}
}

// newService builds the workload service from configuration.
func newService(cfg *config.Config) (*service.Service, error) {
	boundary, err := cfg.Boundary()
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithLogger(logger.Get().Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithCacheSize(cfg.CacheSize),
		service.WithBoundary(boundary),
		service.WithLabels(cfg.Labels),
	), nil
}

// newMux registers the business API and the docs routes.
func newMux(ctx context.Context, svc *service.Service, cfg *config.Config) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, cfg.MaxRequestBytes).Register(ctx, mux)
	return mux
}

// seed stores the configured snapshot file, if any.
func seed(ctx context.Context, svc *service.Service, path string) error {
	if path == "" {
		return nil
	}
	p, err := projectfile.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}
	created, err := svc.CreateProject(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to store seed project: %w", err)
	}
	logger.Get().Info(ctx, "seed project stored",
		logger.String("id", created.ID),
		logger.Int("resources", len(created.Resources)),
		logger.Int("tasks", len(created.Tasks)),
	)
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(stopCtx, "service stop failed", logger.Error(err))
		}
	}()

	if err := seed(ctx, svc, cfg.SeedFile); err != nil {
		return err
	}

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, cfg),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startServiceMetricsUpdater periodically mirrors service statistics into
// gauges.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateServiceMetrics updates service-level metrics.
func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()
	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if projects, ok := stats["projects"].(int); ok {
		metrics.UpdateProjectsStored(projects)
	}
	if cached, ok := stats["cached"].(int64); ok {
		metrics.UpdateCacheSize(int(cached))
	}
}

type reportOptions struct {
	file     string
	boundary string
	asJSON   bool
	labels   map[string]string
}

func reportCmd() *cobra.Command {
	var opts reportOptions
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the usage of a project snapshot file",
		Long: `Print the usage of a project snapshot file.

Examples:
  loadwatch report -f project.yaml
  loadwatch report -f project.json --boundary exclusive --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "project snapshot (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&opts.boundary, "boundary", sweep.BoundaryInclusive.String(), "boundary mode: inclusive or exclusive")
	cmd.Flags().BoolVarP(&opts.asJSON, "json", "j", false, "output as JSON")
	cmd.Flags().StringToStringVar(&opts.labels, "label", nil, "label text overrides, e.g. status_busy=Full")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runReport(ctx context.Context, w io.Writer, opts reportOptions) error {
	boundary, err := sweep.ParseBoundary(opts.boundary)
	if err != nil {
		return err
	}
	p, err := projectfile.Load(opts.file)
	if err != nil {
		return err
	}

	svc := service.New(service.WithBoundary(boundary), service.WithLabels(opts.labels))
	usage := svc.Evaluate(ctx, p.Resources, p.Tasks)
	rep := workload.Report{
		ProjectID: p.ID,
		Revision:  p.Revision,
		Boundary:  boundary.String(),
		Summary:   workload.Summarize(usage),
		Resources: usage,
	}

	if opts.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return report.NewPrinter(w).Print(rep)
}
