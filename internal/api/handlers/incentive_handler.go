package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// IncentiveService defines the referral incentive operations used by the handler.
type IncentiveService interface {
	ListByDoctor(ctx context.Context, doctorID string, unpaidOnly bool) ([]*entities.DoctorIncentive, error)
	Summary(ctx context.Context, doctorID string) (*entities.IncentiveSummary, error)
	MarkPaid(ctx context.Context, ids []string) error
}

// IncentiveHandler handles referring doctor incentives
type IncentiveHandler struct {
	incentives IncentiveService
}

// NewIncentiveHandler creates a new incentive handler
func NewIncentiveHandler(incentives IncentiveService) *IncentiveHandler {
	return &IncentiveHandler{incentives: incentives}
}

// ListByDoctor handles GET /api/doctors/{id}/incentives?unpaid=true
func (h *IncentiveHandler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	unpaidOnly := false
	if v := r.URL.Query().Get("unpaid"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "unpaid must be true or false")
			return
		}
		unpaidOnly = parsed
	}

	incentives, err := h.incentives.ListByDoctor(r.Context(), r.PathValue("id"), unpaidOnly)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"incentives": incentives,
		"count":      len(incentives),
	})
}

// Summary handles GET /api/doctors/{id}/incentives/summary
func (h *IncentiveHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.incentives.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

type markPaidRequest struct {
	IncentiveIDs []string `json:"incentive_ids"`
}

// MarkPaid handles POST /api/incentives/pay
func (h *IncentiveHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req markPaidRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.incentives.MarkPaid(r.Context(), req.IncentiveIDs); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status": "paid",
		"count":  len(req.IncentiveIDs),
	})
}
