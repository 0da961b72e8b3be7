package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// DocumentRepository defines operations for uploaded document records
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	ListByVisit(ctx context.Context, visitID string) ([]*entities.Document, error)
}
