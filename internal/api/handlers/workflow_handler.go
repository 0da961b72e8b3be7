package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/workflow"
)

// NextActionResolver resolves what a visit needs next.
type NextActionResolver interface {
	NextAction(ctx context.Context, visitID string) (*workflow.Result, error)
}

// WorkflowHandler handles the visit checklist
type WorkflowHandler struct {
	resolver NextActionResolver
}

// NewWorkflowHandler creates a new workflow handler
func NewWorkflowHandler(resolver NextActionResolver) *WorkflowHandler {
	return &WorkflowHandler{resolver: resolver}
}

// NextAction handles GET /api/visits/{id}/next-action
func (h *WorkflowHandler) NextAction(w http.ResponseWriter, r *http.Request) {
	visitID := r.PathValue("id")
	if visitID == "" {
		respondWithError(w, http.StatusBadRequest, "visit ID is required")
		return
	}

	result, err := h.resolver.NextAction(r.Context(), visitID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
