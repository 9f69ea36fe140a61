// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/loadwatch/internal/app"
	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/pkg/logger"
)

// DefaultMaxRequestBytes bounds request bodies when no limit is configured.
const DefaultMaxRequestBytes int64 = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate computes usage for a snapshot without storing it.
	Evaluate(ctx context.Context, resources []model.Resource, tasks []model.Task) []model.ResourceUsage

	CreateProject(ctx context.Context, p model.Project) (model.Project, error)
	PutProject(ctx context.Context, p model.Project) (model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjects(ctx context.Context) []repository.Info

	// Usage reads the usage report of the current project revision.
	Usage(ctx context.Context, id string) (workload.Report, error)
	ResourceUsage(ctx context.Context, projectID string, resourceID model.ID) (model.ResourceUsage, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	evaluateHandler *EvaluateHandler
	projectsHandler *ProjectsHandler
}

// NewServer creates a new API server with all handlers. A non-positive
// maxRequestBytes falls back to DefaultMaxRequestBytes.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRequestBytes int64) *Server {
	if maxRequestBytes <= 0 {
		maxRequestBytes = DefaultMaxRequestBytes
	}
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		evaluateHandler: NewEvaluateHandler(deps, maxRequestBytes),
		projectsHandler: NewProjectsHandler(deps, maxRequestBytes),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /v1/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))

	p := s.projectsHandler
	mux.HandleFunc("POST /v1/projects", MetricsMiddleware(p.HandleCreate, "projects"))
	mux.HandleFunc("GET /v1/projects", MetricsMiddleware(p.HandleList, "projects"))
	mux.HandleFunc("GET /v1/projects/{id}", MetricsMiddleware(p.HandleGet, "project"))
	mux.HandleFunc("PUT /v1/projects/{id}", MetricsMiddleware(p.HandlePut, "project"))
	mux.HandleFunc("DELETE /v1/projects/{id}", MetricsMiddleware(p.HandleDelete, "project"))
	mux.HandleFunc("GET /v1/projects/{id}/usage", MetricsMiddleware(p.HandleUsage, "usage"))
	mux.HandleFunc("GET /v1/projects/{id}/usage/{resourceID}", MetricsMiddleware(p.HandleResourceUsage, "resource_usage"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before writing the status. A value that cannot be
// encoded, such as a non-finite float, is answered with a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Get().Named("api").Error(context.Background(), "response encoding failed",
			logger.Int("status", status),
			logger.Error(err),
		)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "encode_failed", Message: err.Error()})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps a service or decode error to its HTTP status.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, ErrPayloadTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err)
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidProject):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeBody reads a single JSON document of at most limit bytes into v.
func decodeBody(w http.ResponseWriter, r *http.Request, op string, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return WrapKind(op, ErrPayloadTooLarge, err)
		case errors.Is(err, io.EOF):
			return WrapKind(op, ErrBadRequest, errors.New("empty body"))
		default:
			return WrapKind(op, ErrBadRequest, err)
		}
	}
	if dec.More() {
		return WrapKind(op, ErrBadRequest, errors.New("trailing data after JSON body"))
	}
	return nil
}
