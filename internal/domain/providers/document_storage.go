package providers

import (
	"context"
	"io"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// DocumentStorage stores uploaded file contents
type DocumentStorage interface {
	// Save writes the content and returns the storage path and byte count
	Save(ctx context.Context, visitID, filename string, content io.Reader) (string, int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes stored content. A missing file is not an error.
	Delete(ctx context.Context, path string) error
}

// InvoicePrint is the data printed on an invoice
type InvoicePrint struct {
	ClinicName string
	Invoice    *entities.Invoice
	Patient    *entities.Patient
	Doctor     *entities.Doctor
}

// FormFPrint is the data printed on a Form F declaration
type FormFPrint struct {
	ClinicName string
	Visit      *entities.Visit
	Patient    *entities.Patient
	Doctor     *entities.Doctor
	Scans      []entities.InvoiceItem
}

// DocumentRenderer renders printable documents
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, w io.Writer, data InvoicePrint) error
	RenderFormF(ctx context.Context, w io.Writer, data FormFPrint) error
}
