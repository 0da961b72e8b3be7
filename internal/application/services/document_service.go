package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// UploadInput is one uploaded file
type UploadInput struct {
	VisitID      string
	Filename     string
	ContentType  string
	DocumentType entities.DocumentType
	Content      io.Reader
}

// DocumentService stores visit documents
type DocumentService struct {
	repo    repositories.DocumentRepository
	visits  repositories.VisitRepository
	storage providers.DocumentStorage
	events  providers.EventBus
}

// NewDocumentService creates a new document service
func NewDocumentService(
	repo repositories.DocumentRepository,
	visits repositories.VisitRepository,
	storage providers.DocumentStorage,
	events providers.EventBus,
) *DocumentService {
	return &DocumentService{
		repo:    repo,
		visits:  visits,
		storage: storage,
		events:  events,
	}
}

// Upload stores the file and records it against the visit. Without an
// explicit type the document is classified by its filename.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*entities.Document, error) {
	filename := filepath.Base(strings.TrimSpace(in.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return nil, apperrors.NewValidationError("filename is required")
	}
	if in.Content == nil {
		return nil, apperrors.NewValidationError("file content is required")
	}
	if in.DocumentType != "" && !in.DocumentType.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown document type %q", in.DocumentType))
	}

	if _, err := s.visits.GetByID(ctx, in.VisitID); err != nil {
		return nil, err
	}

	path, size, err := s.storage.Save(ctx, in.VisitID, filename, in.Content)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to store document", err)
	}

	doc := &entities.Document{
		ID:           uuid.NewString(),
		VisitID:      in.VisitID,
		DocumentType: in.DocumentType,
		Filename:     filename,
		StoragePath:  path,
		ContentType:  in.ContentType,
		SizeBytes:    size,
		UploadedAt:   time.Now().UTC(),
	}
	doc.DocumentType = doc.EffectiveType()

	if err := s.repo.Create(ctx, doc); err != nil {
		if derr := s.storage.Delete(ctx, path); derr != nil {
			observability.LoggerFromContext(ctx).Warn().Err(derr).
				Str("visit_id", doc.VisitID).
				Str("storage_path", path).
				Msg("failed to remove unrecorded document")
		}
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("visit_id", doc.VisitID).
		Str("document_id", doc.ID).
		Str("document_type", string(doc.DocumentType)).
		Msg("document uploaded")
	publishVisitEvent(ctx, s.events, entities.NewVisitEvent(doc.VisitID, entities.VisitEventTypeDocumentUploaded, map[string]interface{}{
		"document_id":   doc.ID,
		"document_type": string(doc.DocumentType),
	}))

	return doc, nil
}

// List returns a visit's documents
func (s *DocumentService) List(ctx context.Context, visitID string) ([]*entities.Document, error) {
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}
	return s.repo.ListByVisit(ctx, visitID)
}

// Open returns a document record and its stored content. The caller closes
// the reader.
func (s *DocumentService) Open(ctx context.Context, id string) (*entities.Document, io.ReadCloser, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("content of document %s is missing", id))
		}
		return nil, nil, apperrors.NewPersistenceError("failed to open document", err)
	}
	return doc, rc, nil
}
