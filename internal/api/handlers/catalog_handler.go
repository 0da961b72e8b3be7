package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

const (
	defaultCatalogLimit = 30
	maxCatalogLimit     = 100
)

// CatalogService defines the catalog operations used by the handler.
type CatalogService interface {
	Create(ctx context.Context, item *entities.CatalogItem) error
	Get(ctx context.Context, id string) (*entities.CatalogItem, error)
	Search(ctx context.Context, domain entities.BillingDomain, query string, limit, offset int) ([]*entities.CatalogItem, error)
}

// CatalogHandler handles medicines, lab tests and scans
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateItem handles POST /api/catalog
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var item entities.CatalogItem
	if !decodeJSON(w, r, &item) {
		return
	}

	if err := h.catalog.Create(r.Context(), &item); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, &item)
}

// GetItem handles GET /api/catalog/items/{id}
func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, item)
}

// Search handles GET /api/catalog/{domain}?q=&limit=&offset=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultCatalogLimit
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "invalid limit parameter")
			return
		}
		limit = min(parsed, maxCatalogLimit)
	}
	offset := 0
	if v := query.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "invalid offset parameter")
			return
		}
		offset = parsed
	}

	items, err := h.catalog.Search(r.Context(), entities.BillingDomain(r.PathValue("domain")), query.Get("q"), limit, offset)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}
