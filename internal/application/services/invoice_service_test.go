package services_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/application/services"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

type invoiceFixture struct {
	invoices *MockInvoiceRepository
	visits   *MockVisitRepository
	actions  *MockVisitActionsRepository
	patients *MockPatientRepository
	doctors  *MockDoctorRepository
	renderer *MockRenderer
	events   *MockEventBus
	service  *services.InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoices: new(MockInvoiceRepository),
		visits:   new(MockVisitRepository),
		actions:  new(MockVisitActionsRepository),
		patients: new(MockPatientRepository),
		doctors:  new(MockDoctorRepository),
		renderer: new(MockRenderer),
		events:   new(MockEventBus),
	}
	f.service = services.NewInvoiceService(f.invoices, f.visits, f.actions, f.patients, f.doctors, f.renderer, f.events, "Sunrise Clinic")

	f.visits.On("GetByID", mock.Anything, "visit-1").Return(&entities.Visit{ID: "visit-1", PatientID: "p-1", DoctorID: "doc-1"}, nil).Maybe()
	f.patients.On("GetByID", mock.Anything, "p-1").Return(&entities.Patient{ID: "p-1", Name: "Asha"}, nil).Maybe()
	f.doctors.On("GetByID", mock.Anything, "doc-1").Return(&entities.Doctor{ID: "doc-1", Name: "Dr. Mehta"}, nil).Maybe()
	f.doctors.On("GetByID", mock.Anything, "ref-1").Return(&entities.Doctor{ID: "ref-1", Name: "Dr. Rao"}, nil).Maybe()
	f.events.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func TestInvoiceService_Print(t *testing.T) {
	f := newInvoiceFixture()
	inv := &entities.Invoice{InvoiceNumber: "CLN-PH-000001", VisitID: "visit-1", Domain: entities.BillingDomainPharmacy}
	f.invoices.On("GetByNumber", mock.Anything, "CLN-PH-000001").Return(inv, nil)
	f.invoices.On("MarkPrinted", mock.Anything, "CLN-PH-000001", mock.Anything).Return(nil)
	f.renderer.On("RenderInvoice", mock.Anything, mock.Anything, mock.MatchedBy(func(p providers.InvoicePrint) bool {
		return p.Doctor.ID == "doc-1" && p.Patient.Name == "Asha" && p.ClinicName == "Sunrise Clinic"
	})).Return(nil)

	var out bytes.Buffer
	require.NoError(t, f.service.Print(context.Background(), "CLN-PH-000001", &out))

	assert.Equal(t, "%PDF-invoice", out.String())
	f.invoices.AssertCalled(t, "MarkPrinted", mock.Anything, "CLN-PH-000001", mock.Anything)
	f.events.AssertCalled(t, "Publish", mock.Anything, "visit:visit-1", mock.Anything)
}

func TestInvoiceService_Print_UsesReferringDoctor(t *testing.T) {
	f := newInvoiceFixture()
	ref := "ref-1"
	inv := &entities.Invoice{InvoiceNumber: "CLN-USG-000002", VisitID: "visit-1", Domain: entities.BillingDomainUltrasound, ReferringDoctorID: &ref}
	f.invoices.On("GetByNumber", mock.Anything, "CLN-USG-000002").Return(inv, nil)
	f.invoices.On("MarkPrinted", mock.Anything, "CLN-USG-000002", mock.Anything).Return(nil)
	f.renderer.On("RenderInvoice", mock.Anything, mock.Anything, mock.MatchedBy(func(p providers.InvoicePrint) bool {
		return p.Doctor.ID == "ref-1"
	})).Return(nil)

	require.NoError(t, f.service.Print(context.Background(), "CLN-USG-000002", &bytes.Buffer{}))
}

func TestInvoiceService_Print_RenderFailureDoesNotMark(t *testing.T) {
	f := newInvoiceFixture()
	inv := &entities.Invoice{InvoiceNumber: "CLN-LAB-000003", VisitID: "visit-1", Domain: entities.BillingDomainLab}
	f.invoices.On("GetByNumber", mock.Anything, "CLN-LAB-000003").Return(inv, nil)
	f.renderer.On("RenderInvoice", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("font missing"))

	err := f.service.Print(context.Background(), "CLN-LAB-000003", &bytes.Buffer{})

	assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	f.invoices.AssertNotCalled(t, "MarkPrinted", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoiceService_PrintFormF(t *testing.T) {
	t.Run("prints flagged scans", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("ListByVisit", mock.Anything, "visit-1").Return([]*entities.Invoice{
			{Domain: entities.BillingDomainUltrasound, Items: []entities.InvoiceItem{
				{Name: "Obstetric USG", FormFNeeded: true},
				{Name: "Abdomen USG"},
			}},
		}, nil)
		f.invoices.On("HasFormFItems", mock.Anything, "visit-1").Return(true, nil)
		f.renderer.On("RenderFormF", mock.Anything, mock.Anything, mock.MatchedBy(func(p providers.FormFPrint) bool {
			return len(p.Scans) == 1 && p.Scans[0].Name == "Obstetric USG"
		})).Return(nil)
		f.actions.On("SetFormFPrinted", mock.Anything, "visit-1", mock.Anything).Return(nil)

		var out bytes.Buffer
		require.NoError(t, f.service.PrintFormF(context.Background(), "visit-1", &out))

		assert.Equal(t, "%PDF-formf", out.String())
		f.actions.AssertCalled(t, "SetFormFPrinted", mock.Anything, "visit-1", mock.Anything)
	})

	t.Run("no ultrasound invoice", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("ListByVisit", mock.Anything, "visit-1").Return([]*entities.Invoice{{Domain: entities.BillingDomainLab}}, nil)

		err := f.service.PrintFormF(context.Background(), "visit-1", &bytes.Buffer{})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("no scan requires it", func(t *testing.T) {
		f := newInvoiceFixture()
		f.invoices.On("ListByVisit", mock.Anything, "visit-1").Return([]*entities.Invoice{{Domain: entities.BillingDomainUltrasound}}, nil)
		f.invoices.On("HasFormFItems", mock.Anything, "visit-1").Return(false, nil)

		err := f.service.PrintFormF(context.Background(), "visit-1", &bytes.Buffer{})
		assert.True(t, apperrors.IsValidation(err))
		f.actions.AssertNotCalled(t, "SetFormFPrinted", mock.Anything, mock.Anything, mock.Anything)
	})
}
