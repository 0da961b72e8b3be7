package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// StockDecrement takes quantity units of a catalog item out of stock
type StockDecrement struct {
	ItemID   string
	Quantity int
}

// InvoiceCreation is everything that must be committed together with a new invoice
type InvoiceCreation struct {
	Invoice         *entities.Invoice
	StockDecrements []StockDecrement
	Incentive       *entities.DoctorIncentive
}

// InvoiceRepository defines operations for invoice storage.
// Invoices are immutable apart from the printed flag.
type InvoiceRepository interface {
	// NextNumber returns the next value of the invoice number sequence
	NextNumber(ctx context.Context) (int64, error)
	// Create persists the header, its items, the stock decrements and the
	// incentive in one transaction.
	Create(ctx context.Context, creation *InvoiceCreation) error
	GetByNumber(ctx context.Context, number string) (*entities.Invoice, error)
	ListByVisit(ctx context.Context, visitID string) ([]*entities.Invoice, error)
	MarkPrinted(ctx context.Context, number string, at time.Time) error
	// HasFormFItems reports whether any ultrasound item billed on the visit needs Form F
	HasFormFItems(ctx context.Context, visitID string) (bool, error)
}
