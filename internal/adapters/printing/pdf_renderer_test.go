package printing

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
)

func TestPDFRenderer_RenderInvoice(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFRenderer().RenderInvoice(context.Background(), &buf, providers.InvoicePrint{
		ClinicName: "Sunrise Clinic",
		Invoice: &entities.Invoice{
			InvoiceNumber:   "CLN-PH-000001",
			Domain:          entities.BillingDomainPharmacy,
			TotalAmount:     decimal.NewFromInt(200),
			DiscountAmount:  decimal.NewFromInt(20),
			DiscountedTotal: decimal.NewFromInt(180),
			GSTAmount:       decimal.RequireFromString("19.29"),
			CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			Items: []entities.InvoiceItem{
				{Position: 1, Name: "Paracetamol 500mg", HSNCode: "3004", Quantity: 2, UnitPrice: decimal.NewFromInt(100), TaxRatePercent: decimal.NewFromInt(12), FinalPrice: decimal.NewFromInt(180)},
			},
		},
		Patient: &entities.Patient{Name: "Asha"},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderer_RenderFormF(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFRenderer().RenderFormF(context.Background(), &buf, providers.FormFPrint{
		ClinicName: "Sunrise Clinic",
		Visit:      &entities.Visit{ID: "visit-1", CheckedInAt: time.Now()},
		Patient:    &entities.Patient{Name: "Asha", Phone: "9000000000"},
		Doctor:     &entities.Doctor{Name: "Dr. Rao"},
		Scans:      []entities.InvoiceItem{{Name: "Obstetric USG"}},
	})

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFRenderer_RequiresInput(t *testing.T) {
	r := NewPDFRenderer()
	assert.Error(t, r.RenderInvoice(context.Background(), &bytes.Buffer{}, providers.InvoicePrint{}))
	assert.Error(t, r.RenderFormF(context.Background(), &bytes.Buffer{}, providers.FormFPrint{}))
}
