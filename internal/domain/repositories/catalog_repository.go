package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// CatalogSearchParams filters catalog lookups
type CatalogSearchParams struct {
	Domain     entities.BillingDomain
	Query      string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// CatalogRepository defines operations for billable catalog items
type CatalogRepository interface {
	Create(ctx context.Context, item *entities.CatalogItem) error
	GetByID(ctx context.Context, id string) (*entities.CatalogItem, error)
	Search(ctx context.Context, params CatalogSearchParams) ([]*entities.CatalogItem, error)
}
