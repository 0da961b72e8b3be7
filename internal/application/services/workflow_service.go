package services

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/workflow"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
)

// WorkflowService assembles a visit's facts and resolves its next action
type WorkflowService struct {
	visits    repositories.VisitRepository
	actions   repositories.VisitActionsRepository
	invoices  repositories.InvoiceRepository
	documents repositories.DocumentRepository
	metrics   *observability.Metrics
}

// NewWorkflowService creates a new workflow service
func NewWorkflowService(
	visits repositories.VisitRepository,
	actions repositories.VisitActionsRepository,
	invoices repositories.InvoiceRepository,
	documents repositories.DocumentRepository,
	metrics *observability.Metrics,
) *WorkflowService {
	return &WorkflowService{
		visits:    visits,
		actions:   actions,
		invoices:  invoices,
		documents: documents,
		metrics:   metrics,
	}
}

// NextAction resolves what the visit needs next. The visit_actions row is
// created on first call; repeated calls leave it untouched.
func (s *WorkflowService) NextAction(ctx context.Context, visitID string) (*workflow.Result, error) {
	if _, err := s.visits.GetByID(ctx, visitID); err != nil {
		return nil, err
	}

	created, err := s.actions.EnsureExists(ctx, visitID)
	if err != nil {
		return nil, err
	}
	actions, err := s.actions.Get(ctx, visitID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.invoices.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.ListByVisit(ctx, visitID)
	if err != nil {
		return nil, err
	}

	formFNeeded := false
	if hasDomain(invoices, entities.BillingDomainUltrasound) {
		formFNeeded, err = s.invoices.HasFormFItems(ctx, visitID)
		if err != nil {
			return nil, err
		}
	}

	result := workflow.Resolve(AssembleFacts(visitID, invoices, documents, actions, formFNeeded))

	observability.LoggerFromContext(ctx).Debug().
		Str("visit_id", visitID).
		Str("step", string(result.Next.Tag)).
		Bool("completed", result.IsCompleted()).
		Bool("actions_created", created).
		Msg("next action resolved")
	observability.RecordWorkflowResolution(ctx, s.metrics, string(result.Next.Tag))

	return &result, nil
}

// AssembleFacts builds the workflow snapshot from a visit's stored records
func AssembleFacts(
	visitID string,
	invoices []*entities.Invoice,
	documents []*entities.Document,
	actions *entities.VisitActions,
	formFNeeded bool,
) workflow.Facts {
	facts := workflow.Facts{VisitID: visitID, FormFNeeded: formFNeeded}

	for _, inv := range invoices {
		switch inv.Domain {
		case entities.BillingDomainConsultation:
			facts.ConsultationDone = true
		case entities.BillingDomainLab:
			facts.LabInvoiceExists = true
		case entities.BillingDomainPharmacy:
			facts.PharmacyInvoiceExists = true
			facts.PharmacyInvoicePrinted = facts.PharmacyInvoicePrinted || inv.Printed
		case entities.BillingDomainUltrasound:
			facts.UltrasoundInvoiceExists = true
			facts.UltrasoundInvoicePrinted = facts.UltrasoundInvoicePrinted || inv.Printed
		}
	}

	for _, doc := range documents {
		switch doc.EffectiveType() {
		case entities.DocumentTypePrescription:
			facts.PrescriptionScanned = true
		case entities.DocumentTypeTRF:
			facts.TRFUploaded = true
		case entities.DocumentTypeFormF:
			facts.FormFScanned = true
		}
	}

	if actions != nil {
		facts.FormFPrinted = actions.FormFPrinted
	}
	return facts
}

func hasDomain(invoices []*entities.Invoice, domain entities.BillingDomain) bool {
	for _, inv := range invoices {
		if inv.Domain == domain {
			return true
		}
	}
	return false
}
