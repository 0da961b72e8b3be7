package pricing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// DraftLine is a LineItem plus the catalog metadata needed to snapshot it on an invoice
type DraftLine struct {
	LineItem
	Name           string `json:"name"`
	HSNCode        string `json:"hsn_code,omitempty"`
	FormFNeeded    bool   `json:"form_f_needed,omitempty"`
	AvailableStock *int   `json:"available_stock,omitempty"`
}

// DraftBill is the mutable bill of one billing session for a visit and domain.
// It is held in a session store between requests and consumed by finalization.
type DraftBill struct {
	VisitID         string                 `json:"visit_id"`
	Domain          entities.BillingDomain `json:"domain"`
	Lines           []DraftLine            `json:"lines"`
	InvoiceDiscount Discount               `json:"invoice_discount"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// NewDraftBill starts an empty draft
func NewDraftBill(visitID string, domain entities.BillingDomain) (*DraftBill, error) {
	if visitID == "" {
		return nil, apperrors.NewValidationError("visit id is required")
	}
	if !domain.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown billing domain %q", domain))
	}
	now := time.Now().UTC()
	return &DraftBill{
		VisitID:         visitID,
		Domain:          domain,
		Lines:           []DraftLine{},
		InvoiceDiscount: NoDiscount(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsEmpty reports whether the draft has no lines
func (b *DraftBill) IsEmpty() bool {
	return len(b.Lines) == 0
}

// AddItem appends a line, or adds to the quantity of the line already billing the same item.
// A merged line keeps its existing discount.
func (b *DraftBill) AddItem(line DraftLine) error {
	if line.ItemID == "" {
		return apperrors.NewValidationError("item id is required")
	}
	if line.UnitPrice.IsNegative() {
		return apperrors.NewValidationError("unit price must not be negative")
	}
	if line.TaxRatePercent.IsNegative() {
		return apperrors.NewValidationError("tax rate must not be negative")
	}
	if err := line.Discount.Validate(); err != nil {
		return err
	}

	if i := b.indexOf(line.ItemID); i >= 0 {
		existing := &b.Lines[i]
		qty := existing.Quantity + line.Quantity
		if err := b.checkQuantity(line.ItemID, qty, line.AvailableStock); err != nil {
			return err
		}
		existing.Quantity = qty
		existing.AvailableStock = line.AvailableStock
		b.touch()
		return nil
	}

	if err := b.checkQuantity(line.ItemID, line.Quantity, line.AvailableStock); err != nil {
		return err
	}
	if err := checkItemDiscount(line.LineItem, line.Discount); err != nil {
		return err
	}
	b.Lines = append(b.Lines, line)
	b.touch()
	return nil
}

// RemoveItem drops the line for itemID
func (b *DraftBill) RemoveItem(itemID string) error {
	i := b.indexOf(itemID)
	if i < 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("item %s is not on the %s bill", itemID, b.Domain))
	}
	b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
	b.touch()
	return nil
}

// UpdateQuantity replaces the quantity of the line for itemID
func (b *DraftBill) UpdateQuantity(itemID string, quantity int) error {
	i := b.indexOf(itemID)
	if i < 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("item %s is not on the %s bill", itemID, b.Domain))
	}
	if err := b.checkQuantity(itemID, quantity, b.Lines[i].AvailableStock); err != nil {
		return err
	}
	resized := b.Lines[i].LineItem
	resized.Quantity = quantity
	if err := checkItemDiscount(resized, resized.Discount); err != nil {
		return err
	}
	b.Lines[i].Quantity = quantity
	b.touch()
	return nil
}

// SetItemDiscount replaces the discount of the line for itemID
func (b *DraftBill) SetItemDiscount(itemID string, d Discount) error {
	i := b.indexOf(itemID)
	if i < 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("item %s is not on the %s bill", itemID, b.Domain))
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if err := checkItemDiscount(b.Lines[i].LineItem, d); err != nil {
		return err
	}
	if b.Lines[i].Discount.Equal(d) {
		return nil
	}
	b.Lines[i].Discount = d
	b.touch()
	return nil
}

// SetInvoiceDiscount replaces the invoice-level discount. An Amount may not
// exceed the bill after item discounts; Finalize checks again since lines
// can change afterwards.
func (b *DraftBill) SetInvoiceDiscount(d Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := CheckInvoiceDiscount(b.LineItems(), d); err != nil {
		return err
	}
	if b.InvoiceDiscount.Equal(d) {
		return nil
	}
	b.InvoiceDiscount = d
	b.touch()
	return nil
}

// LineItems returns the engine input for this draft, in line order
func (b *DraftBill) LineItems() []LineItem {
	items := make([]LineItem, len(b.Lines))
	for i, l := range b.Lines {
		items[i] = l.LineItem
	}
	return items
}

// Compute runs the pricing engine over the draft
func (b *DraftBill) Compute() (BillState, error) {
	state := ComputeBillState(b.LineItems(), b.InvoiceDiscount)
	if err := state.Check(); err != nil {
		return BillState{}, err
	}
	return state, nil
}

func (b *DraftBill) checkQuantity(itemID string, quantity int, stock *int) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity must be at least 1")
	}
	if b.Domain.TracksStock() && stock != nil && quantity > *stock {
		return apperrors.NewValidationError(fmt.Sprintf("quantity %d of item %s exceeds available stock %d", quantity, itemID, *stock))
	}
	return nil
}

// CheckInvoiceDiscount rejects an Amount invoice discount larger than the
// post-item-discount base of items
func CheckInvoiceDiscount(items []LineItem, d Discount) error {
	if !d.Exceeds(decimal.Zero) {
		return nil
	}
	base := decimal.Zero
	for _, item := range items {
		price := item.Price()
		base = base.Add(decimal.Max(decimal.Zero, price.Sub(item.Discount.Resolve(price))))
	}
	if d.Exceeds(base) {
		return apperrors.NewValidationError(fmt.Sprintf("invoice discount %s exceeds the bill total %s", d, Round(base).StringFixed(MoneyPlaces)))
	}
	return nil
}

func checkItemDiscount(item LineItem, d Discount) error {
	if price := item.Price(); d.Exceeds(price) {
		return apperrors.NewValidationError(fmt.Sprintf("discount %s exceeds the price %s of item %s", d, Round(price).StringFixed(MoneyPlaces), item.ItemID))
	}
	return nil
}

func (b *DraftBill) indexOf(itemID string) int {
	for i, l := range b.Lines {
		if l.ItemID == itemID {
			return i
		}
	}
	return -1
}

func (b *DraftBill) touch() {
	b.UpdatedAt = time.Now().UTC()
}

// TotalQuantity sums quantities across lines
func (b *DraftBill) TotalQuantity() int {
	n := 0
	for _, l := range b.Lines {
		n += l.Quantity
	}
	return n
}
