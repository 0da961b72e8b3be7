package printing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
)

const (
	pageWidth   = 190.0
	lineHeight  = 7.0
	dateLayout  = "02 Jan 2006 15:04"
	currencyTag = "Rs."
)

// PDFRenderer renders invoices and Form F declarations as A4 PDFs
type PDFRenderer struct{}

var _ providers.DocumentRenderer = (*PDFRenderer)(nil)

// NewPDFRenderer creates a new PDF renderer
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// RenderInvoice writes a printable invoice to w
func (r *PDFRenderer) RenderInvoice(ctx context.Context, w io.Writer, data providers.InvoicePrint) error {
	inv := data.Invoice
	if inv == nil {
		return fmt.Errorf("invoice is required")
	}

	pdf := newDocument()
	header(pdf, data.ClinicName, strings.ToUpper(string(inv.Domain))+" INVOICE")

	pdf.SetFont("Arial", "", 10)
	keyValue(pdf, "Invoice No", inv.InvoiceNumber)
	keyValue(pdf, "Date", inv.CreatedAt.Format(dateLayout))
	if data.Patient != nil {
		keyValue(pdf, "Patient", data.Patient.Name)
	}
	if data.Doctor != nil {
		label := "Doctor"
		if inv.Domain == entities.BillingDomainUltrasound {
			label = "Referred by"
		}
		keyValue(pdf, label, data.Doctor.Name)
	}
	pdf.Ln(4)

	widths := []float64{10, 70, 20, 15, 25, 20, 30}
	tableRow(pdf, widths, true, "#", "Item", "HSN", "Qty", "Rate", "GST %", "Amount")
	for _, it := range inv.Items {
		tableRow(pdf, widths, false,
			fmt.Sprintf("%d", it.Position),
			it.Name,
			it.HSNCode,
			fmt.Sprintf("%d", it.Quantity),
			it.UnitPrice.StringFixed(2),
			it.TaxRatePercent.String(),
			it.FinalPrice.StringFixed(2),
		)
	}
	pdf.Ln(4)

	total(pdf, "Subtotal", inv.TotalAmount)
	if inv.ItemDiscountTotal.IsPositive() {
		total(pdf, "Item discounts", inv.ItemDiscountTotal.Neg())
	}
	if inv.DiscountAmount.IsPositive() {
		total(pdf, "Invoice discount", inv.DiscountAmount.Neg())
	}
	pdf.SetFont("Arial", "B", 11)
	total(pdf, "Total", inv.DiscountedTotal)
	pdf.SetFont("Arial", "", 9)
	total(pdf, "GST included", inv.GSTAmount)

	return pdf.Output(w)
}

// RenderFormF writes the Form F declaration for a visit's ultrasound scans
func (r *PDFRenderer) RenderFormF(ctx context.Context, w io.Writer, data providers.FormFPrint) error {
	if data.Visit == nil {
		return fmt.Errorf("visit is required")
	}

	pdf := newDocument()
	header(pdf, data.ClinicName, "FORM F")

	pdf.SetFont("Arial", "", 10)
	keyValue(pdf, "Visit", data.Visit.ID)
	keyValue(pdf, "Date", data.Visit.CheckedInAt.Format(dateLayout))
	if data.Patient != nil {
		keyValue(pdf, "Patient name", data.Patient.Name)
		keyValue(pdf, "Phone", data.Patient.Phone)
		if data.Patient.DateOfBirth != nil {
			keyValue(pdf, "Date of birth", data.Patient.DateOfBirth.Format("02 Jan 2006"))
		}
		keyValue(pdf, "Address", data.Patient.Address)
	}
	if data.Doctor != nil {
		keyValue(pdf, "Referring doctor", data.Doctor.Name)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(pageWidth, lineHeight, "Procedures performed", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for i, scan := range data.Scans {
		pdf.CellFormat(pageWidth, lineHeight, fmt.Sprintf("%d. %s", i+1, scan.Name), "", 1, "L", false, 0, "")
	}
	pdf.Ln(10)

	pdf.MultiCell(pageWidth, 5,
		"I declare that while undertaking this procedure I have neither detected nor disclosed the sex of the foetus to anybody in any manner.",
		"", "L", false)
	pdf.Ln(12)
	pdf.CellFormat(pageWidth/2, lineHeight, "Signature of patient", "T", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth/2, lineHeight, "Signature of sonologist", "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	return pdf
}

func header(pdf *gofpdf.Fpdf, clinic, title string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(pageWidth, 10, clinic, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 8, title, "B", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func keyValue(pdf *gofpdf.Fpdf, key, value string) {
	pdf.CellFormat(40, lineHeight, key+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(pageWidth-40, lineHeight, value, "", 1, "L", false, 0, "")
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, bold bool, cells ...string) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Arial", style, 9)
	for i, c := range cells {
		align := "L"
		if i >= 3 {
			align = "R"
		}
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], lineHeight, c, "1", ln, align, bold, 0, "")
	}
}

func total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.CellFormat(pageWidth-40, lineHeight, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(40, lineHeight, currencyTag+" "+amount.StringFixed(2), "", 1, "R", false, 0, "")
}
