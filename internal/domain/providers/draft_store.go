package providers

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
)

// DraftStore holds the open draft bill of each visit and billing domain
type DraftStore interface {
	// Get returns a not-found error when no draft is open
	Get(ctx context.Context, visitID string, domain entities.BillingDomain) (*pricing.DraftBill, error)
	Save(ctx context.Context, draft *pricing.DraftBill) error
	Delete(ctx context.Context, visitID string, domain entities.BillingDomain) error
}
