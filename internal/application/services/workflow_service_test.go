package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/workflow"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

func TestWorkflowService_NextAction(t *testing.T) {
	ctx := context.Background()

	visits := new(MockVisitRepository)
	actions := new(MockVisitActionsRepository)
	invoices := new(MockInvoiceRepository)
	documents := new(MockDocumentRepository)
	service := services.NewWorkflowService(visits, actions, invoices, documents, nil)

	visits.On("GetByID", mock.Anything, "visit-1").Return(&entities.Visit{ID: "visit-1"}, nil)
	actions.On("EnsureExists", mock.Anything, "visit-1").Return(true, nil).Once()
	actions.On("EnsureExists", mock.Anything, "visit-1").Return(false, nil)
	actions.On("Get", mock.Anything, "visit-1").Return(&entities.VisitActions{VisitID: "visit-1"}, nil)
	invoices.On("ListByVisit", mock.Anything, "visit-1").Return([]*entities.Invoice{
		{Domain: entities.BillingDomainConsultation},
		{Domain: entities.BillingDomainUltrasound, Printed: true},
	}, nil)
	invoices.On("HasFormFItems", mock.Anything, "visit-1").Return(true, nil)
	documents.On("ListByVisit", mock.Anything, "visit-1").Return([]*entities.Document{
		{Filename: "rx_prescription.jpg"},
	}, nil)

	first, err := service.NextAction(ctx, "visit-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StepPrintFormF, first.Next.Tag)
	assert.True(t, first.Facts.FormFNeeded)

	second, err := service.NextAction(ctx, "visit-1")
	require.NoError(t, err)
	assert.Equal(t, first.Next, second.Next)

	actions.AssertNumberOfCalls(t, "EnsureExists", 2)
}

func TestWorkflowService_NextAction_SkipsFormFLookupWithoutUltrasound(t *testing.T) {
	visits := new(MockVisitRepository)
	actions := new(MockVisitActionsRepository)
	invoices := new(MockInvoiceRepository)
	documents := new(MockDocumentRepository)
	service := services.NewWorkflowService(visits, actions, invoices, documents, nil)

	visits.On("GetByID", mock.Anything, "visit-2").Return(&entities.Visit{ID: "visit-2"}, nil)
	actions.On("EnsureExists", mock.Anything, "visit-2").Return(true, nil)
	actions.On("Get", mock.Anything, "visit-2").Return(&entities.VisitActions{VisitID: "visit-2"}, nil)
	invoices.On("ListByVisit", mock.Anything, "visit-2").Return([]*entities.Invoice{}, nil)
	documents.On("ListByVisit", mock.Anything, "visit-2").Return([]*entities.Document{}, nil)

	result, err := service.NextAction(context.Background(), "visit-2")
	require.NoError(t, err)

	assert.Equal(t, workflow.StepSendToConsultation, result.Next.Tag)
	invoices.AssertNotCalled(t, "HasFormFItems", mock.Anything, mock.Anything)
}

func TestWorkflowService_NextAction_UnknownVisit(t *testing.T) {
	visits := new(MockVisitRepository)
	actions := new(MockVisitActionsRepository)
	service := services.NewWorkflowService(visits, actions, new(MockInvoiceRepository), new(MockDocumentRepository), nil)

	visits.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.NewNotFoundError("visit ghost not found"))

	_, err := service.NextAction(context.Background(), "ghost")

	assert.True(t, apperrors.IsNotFound(err))
	actions.AssertNotCalled(t, "EnsureExists", mock.Anything, mock.Anything)
}

func TestAssembleFacts(t *testing.T) {
	tests := []struct {
		name      string
		invoices  []*entities.Invoice
		documents []*entities.Document
		actions   *entities.VisitActions
		want      workflow.Facts
	}{
		{
			name: "nothing recorded",
			want: workflow.Facts{VisitID: "v"},
		},
		{
			name: "invoices by domain",
			invoices: []*entities.Invoice{
				{Domain: entities.BillingDomainConsultation},
				{Domain: entities.BillingDomainLab},
				{Domain: entities.BillingDomainPharmacy, Printed: true},
				{Domain: entities.BillingDomainUltrasound},
			},
			want: workflow.Facts{
				VisitID:                 "v",
				ConsultationDone:        true,
				LabInvoiceExists:        true,
				PharmacyInvoiceExists:   true,
				PharmacyInvoicePrinted:  true,
				UltrasoundInvoiceExists: true,
			},
		},
		{
			name: "legacy filenames and explicit types",
			documents: []*entities.Document{
				{Filename: "Prescription-001.pdf"},
				{Filename: "scan.jpg", DocumentType: entities.DocumentTypeTRF},
				{Filename: "Signed FORM F.pdf"},
			},
			want: workflow.Facts{
				VisitID:             "v",
				PrescriptionScanned: true,
				TRFUploaded:         true,
				FormFScanned:        true,
			},
		},
		{
			name:    "form f printed flag",
			actions: &entities.VisitActions{FormFPrinted: true},
			want:    workflow.Facts{VisitID: "v", FormFPrinted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.AssembleFacts("v", tt.invoices, tt.documents, tt.actions, false)
			assert.Equal(t, tt.want, got)
		})
	}
}
