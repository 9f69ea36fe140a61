package api

import (
	"net/http"
	"strings"

	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/model"
)

type listResponse struct {
	Projects []repository.Info `json:"projects"`
}

// ProjectsHandler serves stored project snapshots and their usage.
type ProjectsHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps Dependencies, maxBytes int64) *ProjectsHandler {
	return &ProjectsHandler{deps: deps, maxBytes: maxBytes}
}

// HandleCreate handles POST /v1/projects requests.
func (h *ProjectsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_project"
	var p model.Project
	if err := decodeBody(w, r, op, h.maxBytes, &p); err != nil {
		writeFailure(w, err)
		return
	}
	created, err := h.deps.CreateProject(r.Context(), p)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.Header().Set("Location", "/v1/projects/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// HandleList handles GET /v1/projects requests.
func (h *ProjectsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list := h.deps.ListProjects(r.Context())
	if list == nil {
		list = []repository.Info{}
	}
	writeJSON(w, http.StatusOK, listResponse{Projects: list})
}

// HandleGet handles GET /v1/projects/{id} requests.
func (h *ProjectsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_project"
	p, err := h.deps.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandlePut handles PUT /v1/projects/{id} requests. The body id may be
// omitted; when present it must match the path.
func (h *ProjectsHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_project"
	id := r.PathValue("id")
	var p model.Project
	if err := decodeBody(w, r, op, h.maxBytes, &p); err != nil {
		writeFailure(w, err)
		return
	}
	if p.ID = strings.TrimSpace(p.ID); p.ID != "" && p.ID != id {
		writeFailure(w, WrapKind(op, ErrBadRequest, ErrIDMismatch))
		return
	}
	p.ID = id
	updated, err := h.deps.PutProject(r.Context(), p)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete handles DELETE /v1/projects/{id} requests.
func (h *ProjectsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_project"
	if err := h.deps.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUsage handles GET /v1/projects/{id}/usage requests.
func (h *ProjectsHandler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	const op = "api.usage"
	report, err := h.deps.Usage(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleResourceUsage handles GET /v1/projects/{id}/usage/{resourceID}
// requests.
func (h *ProjectsHandler) HandleResourceUsage(w http.ResponseWriter, r *http.Request) {
	const op = "api.resource_usage"
	resourceID := model.NormalizeID(r.PathValue("resourceID"))
	u, err := h.deps.ResourceUsage(r.Context(), r.PathValue("id"), resourceID)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, u)
}
