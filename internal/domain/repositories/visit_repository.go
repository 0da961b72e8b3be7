package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// VisitRepository defines operations for visit storage
type VisitRepository interface {
	Create(ctx context.Context, visit *entities.Visit) error
	GetByID(ctx context.Context, id string) (*entities.Visit, error)
}

// VisitActionsRepository stores the per-visit confirmation flags
type VisitActionsRepository interface {
	// EnsureExists inserts an empty row for the visit unless one is already there.
	// It reports whether a row was created.
	EnsureExists(ctx context.Context, visitID string) (bool, error)
	Get(ctx context.Context, visitID string) (*entities.VisitActions, error)
	SetFormFPrinted(ctx context.Context, visitID string, at time.Time) error
}
