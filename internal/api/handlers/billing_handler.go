package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
)

// BillingService defines the draft bill operations used by the handler.
type BillingService interface {
	StartDraft(ctx context.Context, visitID string, domain entities.BillingDomain) (*services.DraftView, error)
	GetDraft(ctx context.Context, visitID string, domain entities.BillingDomain) (*services.DraftView, error)
	AddItem(ctx context.Context, visitID string, domain entities.BillingDomain, in services.AddItemInput) (*services.DraftView, error)
	RemoveItem(ctx context.Context, visitID string, domain entities.BillingDomain, itemID string) (*services.DraftView, error)
	UpdateItem(ctx context.Context, visitID string, domain entities.BillingDomain, itemID string, in services.UpdateItemInput) (*services.DraftView, error)
	SetInvoiceDiscount(ctx context.Context, visitID string, domain entities.BillingDomain, discount pricing.Discount) (*services.DraftView, error)
	DiscardDraft(ctx context.Context, visitID string, domain entities.BillingDomain) error
	Finalize(ctx context.Context, visitID string, domain entities.BillingDomain, in services.FinalizeInput) (*entities.Invoice, error)
}

// BillingHandler handles draft bills under /api/visits/{id}/bills/{domain}
type BillingHandler struct {
	billing BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billing BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

// billTarget reads the visit and domain path values.
func billTarget(w http.ResponseWriter, r *http.Request) (string, entities.BillingDomain, bool) {
	visitID := r.PathValue("id")
	if visitID == "" {
		respondWithError(w, http.StatusBadRequest, "visit ID is required")
		return "", "", false
	}
	domain := entities.BillingDomain(r.PathValue("domain"))
	if !domain.IsValid() {
		respondWithError(w, http.StatusBadRequest, "unknown billing domain")
		return "", "", false
	}
	return visitID, domain, true
}

// StartDraft handles POST /api/visits/{id}/bills/{domain}
func (h *BillingHandler) StartDraft(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	view, err := h.billing.StartDraft(r.Context(), visitID, domain)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// GetDraft handles GET /api/visits/{id}/bills/{domain}
func (h *BillingHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	view, err := h.billing.GetDraft(r.Context(), visitID, domain)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// DiscardDraft handles DELETE /api/visits/{id}/bills/{domain}
func (h *BillingHandler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	if err := h.billing.DiscardDraft(r.Context(), visitID, domain); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/visits/{id}/bills/{domain}/items
func (h *BillingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	var in services.AddItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	view, err := h.billing.AddItem(r.Context(), visitID, domain, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// UpdateItem handles PATCH /api/visits/{id}/bills/{domain}/items/{itemId}
func (h *BillingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	var in services.UpdateItemInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.Quantity == nil && in.Discount == nil {
		respondWithError(w, http.StatusBadRequest, "quantity or discount is required")
		return
	}

	view, err := h.billing.UpdateItem(r.Context(), visitID, domain, r.PathValue("itemId"), in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// RemoveItem handles DELETE /api/visits/{id}/bills/{domain}/items/{itemId}
func (h *BillingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	view, err := h.billing.RemoveItem(r.Context(), visitID, domain, r.PathValue("itemId"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// SetInvoiceDiscount handles PUT /api/visits/{id}/bills/{domain}/discount.
// The body is the discount itself, e.g. {"type":"percent","value":"10"}.
func (h *BillingHandler) SetInvoiceDiscount(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	var discount pricing.Discount
	if !decodeJSON(w, r, &discount) {
		return
	}

	view, err := h.billing.SetInvoiceDiscount(r.Context(), visitID, domain, discount)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}

// Finalize handles POST /api/visits/{id}/bills/{domain}/finalize
func (h *BillingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	visitID, domain, ok := billTarget(w, r)
	if !ok {
		return
	}

	var in services.FinalizeInput
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &in) {
			return
		}
	}

	invoice, err := h.billing.Finalize(r.Context(), visitID, domain, in)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, invoice)
}
