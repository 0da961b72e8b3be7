package entities

import (
	"github.com/shopspring/decimal"
)

// DailyDomainRevenue is one billing domain's totals for a day
type DailyDomainRevenue struct {
	Domain          BillingDomain   `json:"domain" db:"domain"`
	InvoiceCount    int             `json:"invoice_count" db:"invoice_count"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountedTotal decimal.Decimal `json:"discounted_total" db:"discounted_total"`
	GSTAmount       decimal.Decimal `json:"gst_amount" db:"gst_amount"`
}

// DailyReport is the revenue roll-up for one day
type DailyReport struct {
	Date            string               `json:"date"`
	Domains         []DailyDomainRevenue `json:"domains"`
	InvoiceCount    int                  `json:"invoice_count"`
	Subtotal        decimal.Decimal      `json:"subtotal"`
	DiscountedTotal decimal.Decimal      `json:"discounted_total"`
	GSTAmount       decimal.Decimal      `json:"gst_amount"`
}

// NewDailyReport sums the per-domain rows into a day total
func NewDailyReport(date string, rows []DailyDomainRevenue) DailyReport {
	r := DailyReport{
		Date:            date,
		Domains:         rows,
		Subtotal:        decimal.Zero,
		DiscountedTotal: decimal.Zero,
		GSTAmount:       decimal.Zero,
	}
	if r.Domains == nil {
		r.Domains = []DailyDomainRevenue{}
	}
	for _, row := range rows {
		r.InvoiceCount += row.InvoiceCount
		r.Subtotal = r.Subtotal.Add(row.Subtotal)
		r.DiscountedTotal = r.DiscountedTotal.Add(row.DiscountedTotal)
		r.GSTAmount = r.GSTAmount.Add(row.GSTAmount)
	}
	return r
}

// GSTBreakdownRow is tax collected for one rate and HSN code
type GSTBreakdownRow struct {
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	HSNCode        string          `json:"hsn_code" db:"hsn_code"`
	TaxableValue   decimal.Decimal `json:"taxable_value" db:"taxable_value"`
	GSTAmount      decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	GrossAmount    decimal.Decimal `json:"gross_amount" db:"gross_amount"`
}
