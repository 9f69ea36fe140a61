package api

import (
	"net/http"

	"github.com/okian/loadwatch/internal/domain/model"
)

// evaluateRequest mirrors the OpenAPI schema for POST /v1/evaluate.
type evaluateRequest struct {
	Resources []model.Resource `json:"resources"`
	Tasks     []model.Task     `json:"tasks"`
}

type evaluateResponse struct {
	Resources []model.ResourceUsage `json:"resources"`
}

// EvaluateHandler computes usage for snapshots posted inline.
type EvaluateHandler struct {
	deps     Dependencies
	maxBytes int64
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies, maxBytes int64) *EvaluateHandler {
	return &EvaluateHandler{deps: deps, maxBytes: maxBytes}
}

// HandleEvaluate handles POST /v1/evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	var req evaluateRequest
	if err := decodeBody(w, r, op, h.maxBytes, &req); err != nil {
		writeFailure(w, err)
		return
	}
	usage := h.deps.Evaluate(r.Context(), req.Resources, req.Tasks)
	writeJSON(w, http.StatusOK, evaluateResponse{Resources: usage})
}
