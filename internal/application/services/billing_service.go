package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// DraftView is a draft bill together with its computed, rounded state
type DraftView struct {
	Draft *pricing.DraftBill `json:"draft"`
	State pricing.BillState  `json:"state"`
	// ItemCount is the number of units across all lines
	ItemCount int `json:"item_count"`
}

// AddItemInput selects a catalog item for a draft
type AddItemInput struct {
	ItemID   string           `json:"item_id"`
	Quantity int              `json:"quantity"`
	Discount pricing.Discount `json:"discount"`
}

// UpdateItemInput changes a draft line. Nil fields are left alone.
type UpdateItemInput struct {
	Quantity *int              `json:"quantity,omitempty"`
	Discount *pricing.Discount `json:"discount,omitempty"`
}

// FinalizeInput carries what finalization needs beyond the draft
type FinalizeInput struct {
	// ReferringDoctorID accrues an incentive on ultrasound invoices
	ReferringDoctorID string `json:"referring_doctor_id,omitempty"`
}

// BillingService runs billing sessions and turns them into invoices
type BillingService struct {
	drafts        providers.DraftStore
	catalog       repositories.CatalogRepository
	invoices      repositories.InvoiceRepository
	visits        repositories.VisitRepository
	doctors       repositories.DoctorRepository
	events        providers.EventBus
	metrics       *observability.Metrics
	invoicePrefix string
}

// NewBillingService creates a new billing service. events and metrics may be nil.
func NewBillingService(
	drafts providers.DraftStore,
	catalog repositories.CatalogRepository,
	invoices repositories.InvoiceRepository,
	visits repositories.VisitRepository,
	doctors repositories.DoctorRepository,
	events providers.EventBus,
	metrics *observability.Metrics,
	invoicePrefix string,
) *BillingService {
	return &BillingService{
		drafts:        drafts,
		catalog:       catalog,
		invoices:      invoices,
		visits:        visits,
		doctors:       doctors,
		events:        events,
		metrics:       metrics,
		invoicePrefix: invoicePrefix,
	}
}

// StartDraft opens a draft for the visit and domain, or returns the one already open
func (s *BillingService) StartDraft(ctx context.Context, visitID string, domain entities.BillingDomain) (*DraftView, error) {
	if err := checkDraftDomain(domain); err != nil {
		return nil, err
	}
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, visitID, domain)
	if err == nil {
		return view(draft)
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	draft, err = pricing.NewDraftBill(visitID, domain)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return view(draft)
}

// GetDraft returns the open draft with its computed state
func (s *BillingService) GetDraft(ctx context.Context, visitID string, domain entities.BillingDomain) (*DraftView, error) {
	if err := checkDraftDomain(domain); err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, visitID, domain)
	if err != nil {
		return nil, err
	}
	return view(draft)
}

// AddItem adds a catalog item to the draft. Pharmacy quantities are checked
// against the item's current stock.
func (s *BillingService) AddItem(ctx context.Context, visitID string, domain entities.BillingDomain, in AddItemInput) (*DraftView, error) {
	if in.ItemID == "" {
		return nil, apperrors.NewValidationError("item id is required")
	}

	item, err := s.catalog.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Domain != domain {
		return nil, apperrors.NewValidationError(fmt.Sprintf("item %s is billed under %s, not %s", item.ID, item.Domain, domain))
	}
	if !item.IsActive {
		return nil, apperrors.NewValidationError(fmt.Sprintf("item %s is not active", item.ID))
	}

	return s.mutate(ctx, visitID, domain, func(d *pricing.DraftBill) error {
		return d.AddItem(pricing.DraftLine{
			LineItem: pricing.LineItem{
				ItemID:         item.ID,
				UnitPrice:      item.UnitPrice,
				Quantity:       in.Quantity,
				TaxRatePercent: item.TaxRatePercent,
				Discount:       in.Discount,
			},
			Name:           item.Name,
			HSNCode:        item.HSNCode,
			FormFNeeded:    item.FormFNeeded,
			AvailableStock: item.Stock,
		})
	})
}

// RemoveItem drops a line from the draft
func (s *BillingService) RemoveItem(ctx context.Context, visitID string, domain entities.BillingDomain, itemID string) (*DraftView, error) {
	return s.mutate(ctx, visitID, domain, func(d *pricing.DraftBill) error {
		return d.RemoveItem(itemID)
	})
}

// UpdateItem changes the quantity and/or discount of a line
func (s *BillingService) UpdateItem(ctx context.Context, visitID string, domain entities.BillingDomain, itemID string, in UpdateItemInput) (*DraftView, error) {
	if in.Quantity == nil && in.Discount == nil {
		return nil, apperrors.NewValidationError("quantity or discount is required")
	}
	return s.mutate(ctx, visitID, domain, func(d *pricing.DraftBill) error {
		if in.Quantity != nil {
			if err := d.UpdateQuantity(itemID, *in.Quantity); err != nil {
				return err
			}
		}
		if in.Discount != nil {
			return d.SetItemDiscount(itemID, *in.Discount)
		}
		return nil
	})
}

// SetInvoiceDiscount replaces the bill-level discount
func (s *BillingService) SetInvoiceDiscount(ctx context.Context, visitID string, domain entities.BillingDomain, discount pricing.Discount) (*DraftView, error) {
	return s.mutate(ctx, visitID, domain, func(d *pricing.DraftBill) error {
		return d.SetInvoiceDiscount(discount)
	})
}

// DiscardDraft drops the open draft without billing it
func (s *BillingService) DiscardDraft(ctx context.Context, visitID string, domain entities.BillingDomain) error {
	if err := checkDraftDomain(domain); err != nil {
		return err
	}
	if _, err := s.drafts.Get(ctx, visitID, domain); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, visitID, domain)
}

// Finalize turns the open draft into an invoice and closes the draft
func (s *BillingService) Finalize(ctx context.Context, visitID string, domain entities.BillingDomain, in FinalizeInput) (*entities.Invoice, error) {
	if err := checkDraftDomain(domain); err != nil {
		return nil, err
	}

	draft, err := s.drafts.Get(ctx, visitID, domain)
	if err != nil {
		return nil, err
	}
	if draft.IsEmpty() {
		return nil, apperrors.NewValidationError("cannot finalize an empty bill")
	}

	var referrer *entities.Doctor
	if in.ReferringDoctorID != "" {
		if domain != entities.BillingDomainUltrasound {
			return nil, apperrors.NewValidationError("a referring doctor only applies to ultrasound bills")
		}
		referrer, err = s.doctors.GetByID(ctx, in.ReferringDoctorID)
		if err != nil {
			return nil, err
		}
	}

	inv, err := s.createInvoice(ctx, visitID, domain, draft.Lines, draft.InvoiceDiscount, referrer)
	if err != nil {
		return nil, err
	}

	// The invoice is committed; a stale draft only costs the session store an expiry.
	if err := s.drafts.Delete(ctx, visitID, domain); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("visit_id", visitID).
			Str("domain", string(domain)).
			Msg("failed to delete finalized draft")
	}
	return inv, nil
}

// CreateConsultationInvoice bills the visit doctor's consultation fee
func (s *BillingService) CreateConsultationInvoice(ctx context.Context, visitID string, discount pricing.Discount) (*entities.Invoice, error) {
	if err := discount.Validate(); err != nil {
		return nil, err
	}

	visit, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, err
	}
	doctor, err := s.doctors.GetByID(ctx, visit.DoctorID)
	if err != nil {
		return nil, err
	}

	line := pricing.DraftLine{
		LineItem: pricing.LineItem{
			ItemID:         doctor.ID,
			UnitPrice:      doctor.ConsultationFee,
			Quantity:       1,
			TaxRatePercent: decimal.Zero,
			Discount:       pricing.NoDiscount(),
		},
		Name: "Consultation - " + doctor.Name,
	}
	return s.createInvoice(ctx, visitID, entities.BillingDomainConsultation, []pricing.DraftLine{line}, discount, nil)
}

func (s *BillingService) createInvoice(
	ctx context.Context,
	visitID string,
	domain entities.BillingDomain,
	lines []pricing.DraftLine,
	invoiceDiscount pricing.Discount,
	referrer *entities.Doctor,
) (*entities.Invoice, error) {
	start := time.Now()

	items := make([]pricing.LineItem, len(lines))
	for i, l := range lines {
		items[i] = l.LineItem
	}
	// Lines may have shrunk since the invoice discount was set
	if err := pricing.CheckInvoiceDiscount(items, invoiceDiscount); err != nil {
		return nil, err
	}
	state := pricing.ComputeBillState(items, invoiceDiscount)
	if err := state.Check(); err != nil {
		return nil, err
	}
	rounded := state.Rounded()

	seq, err := s.invoices.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &entities.Invoice{
		ID:                uuid.NewString(),
		InvoiceNumber:     FormatInvoiceNumber(s.invoicePrefix, domain, seq),
		VisitID:           visitID,
		Domain:            domain,
		TotalAmount:       rounded.Subtotal,
		ItemDiscountTotal: rounded.TotalItemDiscount,
		DiscountType:      string(invoiceDiscount.Kind()),
		DiscountValue:     invoiceDiscount.Value(),
		DiscountAmount:    rounded.InvoiceDiscountAmount,
		DiscountedTotal:   rounded.DiscountedTotal,
		GSTAmount:         rounded.GSTTotal,
		CreatedAt:         now,
		Items:             make([]entities.InvoiceItem, len(lines)),
	}
	for i, l := range lines {
		inv.Items[i] = entities.InvoiceItem{
			Position:          i + 1,
			ItemID:            l.ItemID,
			Name:              l.Name,
			HSNCode:           l.HSNCode,
			Quantity:          l.Quantity,
			UnitPrice:         l.UnitPrice,
			ItemDiscountType:  string(l.Discount.Kind()),
			ItemDiscountValue: l.Discount.Value(),
			TaxRatePercent:    l.TaxRatePercent,
			FinalPrice:        rounded.Items[i].NetPrice,
			GSTAmount:         rounded.Items[i].GST,
			FormFNeeded:       l.FormFNeeded,
		}
	}

	creation := &repositories.InvoiceCreation{Invoice: inv}
	if domain.TracksStock() {
		for _, l := range lines {
			creation.StockDecrements = append(creation.StockDecrements, repositories.StockDecrement{ItemID: l.ItemID, Quantity: l.Quantity})
		}
	}
	if referrer != nil {
		inv.ReferringDoctorID = &referrer.ID
		creation.Incentive = &entities.DoctorIncentive{
			ID:              uuid.NewString(),
			DoctorID:        referrer.ID,
			InvoiceID:       inv.ID,
			InvoiceNumber:   inv.InvoiceNumber,
			IncentiveAmount: IncentiveAmount(inv.DiscountedTotal, referrer.IncentivePercent),
			CreatedAt:       now,
		}
	}

	if err := s.invoices.Create(ctx, creation); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Str("visit_id", visitID).
		Str("invoice_number", inv.InvoiceNumber).
		Str("domain", string(domain)).
		Str("discounted_total", inv.DiscountedTotal.StringFixed(2)).
		Msg("invoice finalized")
	if creation.Incentive != nil {
		logger.Info().
			Str("doctor_id", creation.Incentive.DoctorID).
			Str("invoice_number", inv.InvoiceNumber).
			Str("amount", creation.Incentive.IncentiveAmount.StringFixed(2)).
			Msg("incentive accrued")
	}

	observability.RecordInvoiceFinalized(ctx, s.metrics, string(domain), time.Since(start))
	publishVisitEvent(ctx, s.events, entities.NewVisitEvent(visitID, entities.VisitEventTypeInvoiceCreated, map[string]interface{}{
		"invoice_number": inv.InvoiceNumber,
		"domain":         string(domain),
	}))

	return inv, nil
}

func (s *BillingService) mutate(ctx context.Context, visitID string, domain entities.BillingDomain, fn func(*pricing.DraftBill) error) (*DraftView, error) {
	if err := checkDraftDomain(domain); err != nil {
		return nil, err
	}
	draft, err := s.drafts.Get(ctx, visitID, domain)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return view(draft)
}

func view(draft *pricing.DraftBill) (*DraftView, error) {
	state, err := draft.Compute()
	if err != nil {
		return nil, err
	}
	return &DraftView{Draft: draft, State: state.Rounded(), ItemCount: draft.TotalQuantity()}, nil
}

func checkDraftDomain(domain entities.BillingDomain) error {
	if !domain.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown billing domain %q", domain))
	}
	if !domain.HasDraftSession() {
		return apperrors.NewValidationError(fmt.Sprintf("%s is not billed through a draft", domain))
	}
	return nil
}

// FormatInvoiceNumber renders e.g. CLN-PH-000042
func FormatInvoiceNumber(prefix string, domain entities.BillingDomain, seq int64) string {
	if prefix == "" {
		return fmt.Sprintf("%s-%06d", domain.InvoiceCode(), seq)
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, domain.InvoiceCode(), seq)
}

// IncentiveAmount is percent of the invoice's discounted total, rounded to money places
func IncentiveAmount(discountedTotal, percent decimal.Decimal) decimal.Decimal {
	return pricing.Round(discountedTotal.Mul(percent).Div(decimal.NewFromInt(100)))
}
