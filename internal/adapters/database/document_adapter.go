package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var documentColumns = columns("id", "visit_id", "document_type", "filename", "storage_path", "content_type", "size_bytes", "uploaded_at")

// DocumentAdapter implements DocumentRepository
type DocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.DocumentRepository = (*DocumentAdapter)(nil)

// NewDocumentAdapter creates a new document adapter
func NewDocumentAdapter(client *postgres.Client) *DocumentAdapter {
	return &DocumentAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create records an uploaded document
func (a *DocumentAdapter) Create(ctx context.Context, doc *entities.Document) error {
	record := goqu.Record{
		"id":            doc.ID,
		"visit_id":      doc.VisitID,
		"document_type": doc.DocumentType,
		"filename":      doc.Filename,
		"storage_path":  doc.StoragePath,
		"content_type":  doc.ContentType,
		"size_bytes":    doc.SizeBytes,
		"uploaded_at":   doc.UploadedAt,
	}

	query, args, err := a.db.Insert("documents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to record document", err)
	}
	return nil
}

// GetByID returns one document record
func (a *DocumentAdapter) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query, args, err := a.db.Select(documentColumns...).From("documents").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	d := &entities.Document{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&d.ID, &d.VisitID, &d.DocumentType, &d.Filename, &d.StoragePath, &d.ContentType, &d.SizeBytes, &d.UploadedAt,
	)
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("document %s not found", id), "failed to load document")
	}
	return d, nil
}

// ListByVisit returns a visit's documents, oldest first
func (a *DocumentAdapter) ListByVisit(ctx context.Context, visitID string) ([]*entities.Document, error) {
	query, args, err := a.db.Select(documentColumns...).From("documents").
		Where(goqu.Ex{"visit_id": visitID}).
		Order(goqu.I("uploaded_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to list documents", err)
	}
	defer rows.Close()

	docs := []*entities.Document{}
	for rows.Next() {
		d := &entities.Document{}
		if err := rows.Scan(&d.ID, &d.VisitID, &d.DocumentType, &d.Filename, &d.StoragePath, &d.ContentType, &d.SizeBytes, &d.UploadedAt); err != nil {
			return nil, queryError("failed to scan document", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to list documents", err)
	}
	return docs, nil
}
