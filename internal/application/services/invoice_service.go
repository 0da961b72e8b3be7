package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// InvoiceService reads and prints finalized invoices and Form F
type InvoiceService struct {
	invoices   repositories.InvoiceRepository
	visits     repositories.VisitRepository
	actions    repositories.VisitActionsRepository
	patients   repositories.PatientRepository
	doctors    repositories.DoctorRepository
	renderer   providers.DocumentRenderer
	events     providers.EventBus
	clinicName string
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	visits repositories.VisitRepository,
	actions repositories.VisitActionsRepository,
	patients repositories.PatientRepository,
	doctors repositories.DoctorRepository,
	renderer providers.DocumentRenderer,
	events providers.EventBus,
	clinicName string,
) *InvoiceService {
	return &InvoiceService{
		invoices:   invoices,
		visits:     visits,
		actions:    actions,
		patients:   patients,
		doctors:    doctors,
		renderer:   renderer,
		events:     events,
		clinicName: clinicName,
	}
}

// Get returns an invoice by number
func (s *InvoiceService) Get(ctx context.Context, number string) (*entities.Invoice, error) {
	return s.invoices.GetByNumber(ctx, number)
}

// ListByVisit returns a visit's invoices
func (s *InvoiceService) ListByVisit(ctx context.Context, visitID string) ([]*entities.Invoice, error) {
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}
	return s.invoices.ListByVisit(ctx, visitID)
}

// Print renders the invoice to w and sets its printed flag. Nothing is
// marked when rendering fails.
func (s *InvoiceService) Print(ctx context.Context, number string, w io.Writer) error {
	inv, err := s.invoices.GetByNumber(ctx, number)
	if err != nil {
		return err
	}
	visit, patient, err := s.visitAndPatient(ctx, inv.VisitID)
	if err != nil {
		return err
	}

	doctorID := visit.DoctorID
	if inv.ReferringDoctorID != nil {
		doctorID = *inv.ReferringDoctorID
	}
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderInvoice(ctx, &buf, providers.InvoicePrint{
		ClinicName: s.clinicName,
		Invoice:    inv,
		Patient:    patient,
		Doctor:     doctor,
	}); err != nil {
		return apperrors.NewInternalError("failed to render invoice", err)
	}

	if err := s.invoices.MarkPrinted(ctx, number, time.Now().UTC()); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("visit_id", inv.VisitID).
		Str("invoice_number", number).
		Msg("invoice printed")
	publishVisitEvent(ctx, s.events, entities.NewVisitEvent(inv.VisitID, entities.VisitEventTypeInvoicePrinted, map[string]interface{}{
		"invoice_number": number,
		"domain":         string(inv.Domain),
	}))

	if _, err := buf.WriteTo(w); err != nil {
		return apperrors.NewInternalError("failed to write invoice", err)
	}
	return nil
}

// PrintFormF renders the visit's Form F to w and records the print
func (s *InvoiceService) PrintFormF(ctx context.Context, visitID string, w io.Writer) error {
	visit, patient, err := s.visitAndPatient(ctx, visitID)
	if err != nil {
		return err
	}

	invoices, err := s.invoices.ListByVisit(ctx, visitID)
	if err != nil {
		return err
	}
	var ultrasound *entities.Invoice
	for _, inv := range invoices {
		if inv.Domain == entities.BillingDomainUltrasound {
			ultrasound = inv
			break
		}
	}
	if ultrasound == nil {
		return apperrors.NewValidationError("visit has no ultrasound invoice")
	}

	needed, err := s.invoices.HasFormFItems(ctx, visitID)
	if err != nil {
		return err
	}
	if !needed {
		return apperrors.NewValidationError("no scan on this visit requires Form F")
	}

	scans := make([]entities.InvoiceItem, 0, len(ultrasound.Items))
	for _, it := range ultrasound.Items {
		if it.FormFNeeded {
			scans = append(scans, it)
		}
	}
	if len(scans) == 0 {
		// Flagged in the catalog after billing.
		scans = append(scans, ultrasound.Items...)
	}

	doctorID := visit.DoctorID
	if ultrasound.ReferringDoctorID != nil {
		doctorID = *ultrasound.ReferringDoctorID
	}
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderFormF(ctx, &buf, providers.FormFPrint{
		ClinicName: s.clinicName,
		Visit:      visit,
		Patient:    patient,
		Doctor:     doctor,
		Scans:      scans,
	}); err != nil {
		return apperrors.NewInternalError("failed to render form f", err)
	}

	if err := s.actions.SetFormFPrinted(ctx, visitID, time.Now().UTC()); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Str("visit_id", visitID).Msg("form f printed")
	publishVisitEvent(ctx, s.events, entities.NewVisitEvent(visitID, entities.VisitEventTypeFormFPrinted, nil))

	if _, err := buf.WriteTo(w); err != nil {
		return apperrors.NewInternalError("failed to write form f", err)
	}
	return nil
}

func (s *InvoiceService) visitAndPatient(ctx context.Context, visitID string) (*entities.Visit, *entities.Patient, error) {
	visit, err := s.visits.GetByID(ctx, visitID)
	if err != nil {
		return nil, nil, err
	}
	patient, err := s.patients.GetByID(ctx, visit.PatientID)
	if err != nil {
		return nil, nil, err
	}
	return visit, patient, nil
}
