package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

// DocumentService defines the visit document operations used by the handler.
type DocumentService interface {
	Upload(ctx context.Context, in services.UploadInput) (*entities.Document, error)
	List(ctx context.Context, visitID string) ([]*entities.Document, error)
	Open(ctx context.Context, id string) (*entities.Document, io.ReadCloser, error)
}

// DocumentHandler handles scanned visit documents
type DocumentHandler struct {
	documents     DocumentService
	maxUploadSize int64
}

// NewDocumentHandler creates a new document handler. Request bodies larger
// than maxUploadSize bytes are rejected.
func NewDocumentHandler(documents DocumentService, maxUploadSize int64) *DocumentHandler {
	return &DocumentHandler{
		documents:     documents,
		maxUploadSize: maxUploadSize,
	}
}

// Upload handles POST /api/visits/{id}/documents (multipart field "file",
// optional field "document_type")
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	visitID := r.PathValue("id")
	if visitID == "" {
		respondWithError(w, http.StatusBadRequest, "visit ID is required")
		return
	}

	if r.ContentLength > h.maxUploadSize {
		respondWithError(w, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(r.Context(), services.UploadInput{
		VisitID:      visitID,
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		DocumentType: entities.DocumentType(r.FormValue("document_type")),
		Content:      file,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doc)
}

// List handles GET /api/visits/{id}/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// Download handles GET /api/documents/{id}
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "document ID is required")
		return
	}

	doc, content, err := h.documents.Open(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	defer content.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	if doc.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.SizeBytes, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().Err(err).Str("document_id", doc.ID).Msg("failed to write document")
	}
}
