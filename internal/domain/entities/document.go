package entities

import (
	"strings"
	"time"
)

// DocumentType classifies an uploaded visit document
type DocumentType string

const (
	DocumentTypePrescription DocumentType = "prescription"
	DocumentTypeTRF          DocumentType = "trf"
	DocumentTypeFormF        DocumentType = "form_f"
	DocumentTypeOther        DocumentType = "other"
)

// IsValid reports whether t is one of the known document types
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePrescription, DocumentTypeTRF, DocumentTypeFormF, DocumentTypeOther:
		return true
	}
	return false
}

// Document is a file uploaded against a visit
type Document struct {
	ID           string       `json:"id" db:"id"`
	VisitID      string       `json:"visit_id" db:"visit_id"`
	DocumentType DocumentType `json:"document_type,omitempty" db:"document_type"`
	Filename     string       `json:"filename" db:"filename"`
	StoragePath  string       `json:"-" db:"storage_path"`
	ContentType  string       `json:"content_type,omitempty" db:"content_type"`
	SizeBytes    int64        `json:"size_bytes" db:"size_bytes"`
	UploadedAt   time.Time    `json:"uploaded_at" db:"uploaded_at"`
}

// EffectiveType returns the explicit type, falling back to the filename for
// uploads that were stored without one.
func (d Document) EffectiveType() DocumentType {
	if d.DocumentType != "" && d.DocumentType.IsValid() {
		return d.DocumentType
	}
	return ClassifyFilename(d.Filename)
}

// ClassifyFilename tags a file by substring of its name, ignoring case.
// "Form F", "form-f" and "FORM_F" all map to form_f.
func ClassifyFilename(filename string) DocumentType {
	name := strings.ToLower(filename)
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)

	switch {
	case strings.Contains(name, "prescription"):
		return DocumentTypePrescription
	case strings.Contains(name, "trf"):
		return DocumentTypeTRF
	case strings.Contains(name, "form_f"):
		return DocumentTypeFormF
	default:
		return DocumentTypeOther
	}
}
