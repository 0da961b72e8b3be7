package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

func newDocumentFixture() (*services.DocumentService, *MockDocumentRepository, *MockDocumentStorage, *MockEventBus) {
	repo := new(MockDocumentRepository)
	visits := new(MockVisitRepository)
	storage := new(MockDocumentStorage)
	events := new(MockEventBus)

	visits.On("GetByID", mock.Anything, "visit-1").Return(&entities.Visit{ID: "visit-1"}, nil).Maybe()
	events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	return services.NewDocumentService(repo, visits, storage, events), repo, storage, events
}

func TestDocumentService_Upload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		explicit entities.DocumentType
		want     entities.DocumentType
	}{
		{name: "classified by filename", filename: "TRF_lab.pdf", want: entities.DocumentTypeTRF},
		{name: "explicit type wins", filename: "scan001.jpg", explicit: entities.DocumentTypePrescription, want: entities.DocumentTypePrescription},
		{name: "unrecognised name", filename: "xray.png", want: entities.DocumentTypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, storage, events := newDocumentFixture()
			storage.On("Save", mock.Anything, "visit-1", tt.filename, mock.Anything).Return("visit-1/abc.pdf", int64(4), nil)
			repo.On("Create", mock.Anything, mock.Anything).Return(nil)

			doc, err := service.Upload(context.Background(), services.UploadInput{
				VisitID:      "visit-1",
				Filename:     tt.filename,
				DocumentType: tt.explicit,
				Content:      strings.NewReader("data"),
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, doc.DocumentType)
			assert.Equal(t, "visit-1/abc.pdf", doc.StoragePath)
			assert.Equal(t, int64(4), doc.SizeBytes)
			events.AssertCalled(t, "Publish", mock.Anything, "visit:visit-1", mock.Anything)
		})
	}
}

func TestDocumentService_Upload_Validation(t *testing.T) {
	service, _, storage, _ := newDocumentFixture()

	_, err := service.Upload(context.Background(), services.UploadInput{VisitID: "visit-1", Filename: "", Content: strings.NewReader("x")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = service.Upload(context.Background(), services.UploadInput{VisitID: "visit-1", Filename: "a.pdf", DocumentType: "xray", Content: strings.NewReader("x")})
	assert.True(t, apperrors.IsValidation(err))

	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_StorageFailure(t *testing.T) {
	service, repo, storage, _ := newDocumentFixture()
	storage.On("Save", mock.Anything, "visit-1", "rx.pdf", mock.Anything).Return("", int64(0), errors.New("disk full"))

	_, err := service.Upload(context.Background(), services.UploadInput{VisitID: "visit-1", Filename: "rx.pdf", Content: strings.NewReader("x")})

	assert.Equal(t, apperrors.ErrorTypePersistence, apperrors.TypeOf(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_RecordFailureRemovesFile(t *testing.T) {
	service, repo, storage, events := newDocumentFixture()
	storage.On("Save", mock.Anything, "visit-1", "rx.pdf", mock.Anything).Return("visit-1/abc.pdf", int64(1), nil)
	storage.On("Delete", mock.Anything, "visit-1/abc.pdf").Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewPersistenceError("failed to record document", errors.New("connection reset")))

	_, err := service.Upload(context.Background(), services.UploadInput{VisitID: "visit-1", Filename: "rx.pdf", Content: strings.NewReader("x")})

	assert.Equal(t, apperrors.ErrorTypePersistence, apperrors.TypeOf(err))
	storage.AssertCalled(t, "Delete", mock.Anything, "visit-1/abc.pdf")
	events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestDocumentService_Upload_CleanupFailureKeepsRecordError(t *testing.T) {
	service, repo, storage, _ := newDocumentFixture()
	storage.On("Save", mock.Anything, "visit-1", "rx.pdf", mock.Anything).Return("visit-1/abc.pdf", int64(1), nil)
	storage.On("Delete", mock.Anything, "visit-1/abc.pdf").Return(errors.New("read-only filesystem"))
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewValidationError("invalid input syntax for type uuid"))

	_, err := service.Upload(context.Background(), services.UploadInput{VisitID: "visit-1", Filename: "rx.pdf", Content: strings.NewReader("x")})

	assert.True(t, apperrors.IsValidation(err))
	storage.AssertExpectations(t)
}

func TestDocumentService_Open(t *testing.T) {
	doc := &entities.Document{ID: "doc-1", VisitID: "visit-1", Filename: "rx.pdf", StoragePath: "visit-1/abc.pdf"}

	t.Run("returns record and content", func(t *testing.T) {
		service, repo, storage, _ := newDocumentFixture()
		repo.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
		storage.On("Open", mock.Anything, "visit-1/abc.pdf").Return(io.NopCloser(strings.NewReader("pdf")), nil)

		got, rc, err := service.Open(context.Background(), "doc-1")
		require.NoError(t, err)
		defer rc.Close()

		assert.Equal(t, "rx.pdf", got.Filename)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "pdf", string(data))
	})

	t.Run("unknown document", func(t *testing.T) {
		service, repo, storage, _ := newDocumentFixture()
		repo.On("GetByID", mock.Anything, "doc-9").Return(nil, apperrors.NewNotFoundError("document doc-9 not found"))

		_, _, err := service.Open(context.Background(), "doc-9")
		assert.True(t, apperrors.IsNotFound(err))
		storage.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("missing content", func(t *testing.T) {
		service, repo, storage, _ := newDocumentFixture()
		repo.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
		storage.On("Open", mock.Anything, "visit-1/abc.pdf").Return(nil, fmt.Errorf("failed to open document: %w", fs.ErrNotExist))

		_, _, err := service.Open(context.Background(), "doc-1")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("storage failure", func(t *testing.T) {
		service, repo, storage, _ := newDocumentFixture()
		repo.On("GetByID", mock.Anything, "doc-1").Return(doc, nil)
		storage.On("Open", mock.Anything, "visit-1/abc.pdf").Return(nil, errors.New("permission denied"))

		_, _, err := service.Open(context.Background(), "doc-1")
		assert.Equal(t, apperrors.ErrorTypePersistence, apperrors.TypeOf(err))
	})
}
