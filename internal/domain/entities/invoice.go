package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a finalized bill. Everything but Printed is immutable once created.
type Invoice struct {
	ID                string          `json:"id" db:"id"`
	InvoiceNumber     string          `json:"invoice_number" db:"invoice_number"`
	VisitID           string          `json:"visit_id" db:"visit_id"`
	Domain            BillingDomain   `json:"domain" db:"domain"`
	ReferringDoctorID *string         `json:"referring_doctor_id,omitempty" db:"referring_doctor_id"`
	TotalAmount       decimal.Decimal `json:"total_amount" db:"total_amount"`
	ItemDiscountTotal decimal.Decimal `json:"item_discount_total" db:"item_discount_total"`
	DiscountType      string          `json:"discount_type" db:"discount_type"`
	DiscountValue     decimal.Decimal `json:"discount_value" db:"discount_value"`
	DiscountAmount    decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	DiscountedTotal   decimal.Decimal `json:"discounted_total" db:"discounted_total"`
	GSTAmount         decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	Printed           bool            `json:"printed" db:"printed"`
	PrintedAt         *time.Time      `json:"printed_at,omitempty" db:"printed_at"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	Items             []InvoiceItem   `json:"items"`
}

// InvoiceItem is the historical snapshot of one billed line. It is never recomputed.
type InvoiceItem struct {
	ID                string          `json:"id" db:"id"`
	InvoiceID         string          `json:"invoice_id" db:"invoice_id"`
	Position          int             `json:"position" db:"position"`
	ItemID            string          `json:"item_id" db:"item_id"`
	Name              string          `json:"name" db:"name"`
	HSNCode           string          `json:"hsn_code,omitempty" db:"hsn_code"`
	Quantity          int             `json:"quantity" db:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price" db:"unit_price"`
	ItemDiscountType  string          `json:"item_discount_type" db:"item_discount_type"`
	ItemDiscountValue decimal.Decimal `json:"item_discount_value" db:"item_discount_value"`
	TaxRatePercent    decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	FinalPrice        decimal.Decimal `json:"final_price" db:"final_price"`
	GSTAmount         decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	FormFNeeded       bool            `json:"form_f_needed" db:"form_f_needed"`
}
