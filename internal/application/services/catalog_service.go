package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var hundredPercent = decimal.NewFromInt(100)

// CatalogService manages billable medicines, lab tests and scans
type CatalogService struct {
	repo repositories.CatalogRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repositories.CatalogRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// Create validates and stores a catalog item. Stock is kept only for
// pharmacy items and the Form F flag only for scans.
func (s *CatalogService) Create(ctx context.Context, item *entities.CatalogItem) error {
	item.Name = strings.TrimSpace(item.Name)
	switch {
	case !item.Domain.IsValid() || item.Domain == entities.BillingDomainConsultation:
		return apperrors.NewValidationError(fmt.Sprintf("catalog items cannot be billed under %q", item.Domain))
	case item.Name == "":
		return apperrors.NewValidationError("name is required")
	case item.UnitPrice.IsNegative():
		return apperrors.NewValidationError("unit price must not be negative")
	case item.TaxRatePercent.IsNegative() || item.TaxRatePercent.GreaterThan(hundredPercent):
		return apperrors.NewValidationError("tax rate must be between 0 and 100")
	case item.Stock != nil && *item.Stock < 0:
		return apperrors.NewValidationError("stock must not be negative")
	}

	if !item.Domain.TracksStock() {
		item.Stock = nil
	} else if item.Stock == nil {
		zero := 0
		item.Stock = &zero
	}
	if item.Domain != entities.BillingDomainUltrasound {
		item.FormFNeeded = false
	}

	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.IsActive = true
	item.CreatedAt = now
	item.UpdatedAt = now
	return s.repo.Create(ctx, item)
}

// Get returns a catalog item by ID
func (s *CatalogService) Get(ctx context.Context, id string) (*entities.CatalogItem, error) {
	return s.repo.GetByID(ctx, id)
}

// Search finds active items of a domain by name
func (s *CatalogService) Search(ctx context.Context, domain entities.BillingDomain, query string, limit, offset int) ([]*entities.CatalogItem, error) {
	if !domain.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown billing domain %q", domain))
	}
	return s.repo.Search(ctx, repositories.CatalogSearchParams{
		Domain:     domain,
		Query:      query,
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}
