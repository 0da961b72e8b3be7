package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

// InvoiceService defines the invoice and printing operations used by the handler.
type InvoiceService interface {
	Get(ctx context.Context, number string) (*entities.Invoice, error)
	ListByVisit(ctx context.Context, visitID string) ([]*entities.Invoice, error)
	Print(ctx context.Context, number string, w io.Writer) error
	PrintFormF(ctx context.Context, visitID string, w io.Writer) error
}

// InvoiceHandler handles finalized invoices and printed documents
type InvoiceHandler struct {
	invoices InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoices InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// GetInvoice handles GET /api/invoices/{number}
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "invoice number is required")
		return
	}

	invoice, err := h.invoices.Get(r.Context(), number)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, invoice)
}

// ListVisitInvoices handles GET /api/visits/{id}/invoices
func (h *InvoiceHandler) ListVisitInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.ListByVisit(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// PrintInvoice handles POST /api/invoices/{number}/print
func (h *InvoiceHandler) PrintInvoice(w http.ResponseWriter, r *http.Request) {
	number := r.PathValue("number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "invoice number is required")
		return
	}

	var buf bytes.Buffer
	if err := h.invoices.Print(r.Context(), number, &buf); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPDF(w, r, number+".pdf", &buf)
}

// PrintFormF handles POST /api/visits/{id}/form-f/print
func (h *InvoiceHandler) PrintFormF(w http.ResponseWriter, r *http.Request) {
	visitID := r.PathValue("id")
	if visitID == "" {
		respondWithError(w, http.StatusBadRequest, "visit ID is required")
		return
	}

	var buf bytes.Buffer
	if err := h.invoices.PrintFormF(r.Context(), visitID, &buf); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithPDF(w, r, "form-f-"+visitID+".pdf", &buf)
}

func respondWithPDF(w http.ResponseWriter, r *http.Request, filename string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("file", filename).Msg("failed to write pdf")
	}
}
