package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DoctorIncentive is the referral amount accrued to a doctor by one ultrasound invoice
type DoctorIncentive struct {
	ID              string          `json:"id" db:"id"`
	DoctorID        string          `json:"doctor_id" db:"doctor_id"`
	InvoiceID       string          `json:"invoice_id" db:"invoice_id"`
	InvoiceNumber   string          `json:"invoice_number" db:"invoice_number"`
	IncentiveAmount decimal.Decimal `json:"incentive_amount" db:"incentive_amount"`
	Paid            bool            `json:"paid" db:"paid"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// IncentiveSummary aggregates a doctor's incentives
type IncentiveSummary struct {
	DoctorID   string          `json:"doctor_id" db:"doctor_id"`
	DoctorName string          `json:"doctor_name,omitempty" db:"doctor_name"`
	Count      int             `json:"count" db:"count"`
	Accrued    decimal.Decimal `json:"accrued" db:"accrued"`
	Paid       decimal.Decimal `json:"paid" db:"paid"`
	Pending    decimal.Decimal `json:"pending" db:"pending"`
}

// NewIncentiveSummary derives Pending from the accrued and paid totals.
// Pending never goes below zero.
func NewIncentiveSummary(doctorID string, count int, accrued, paid decimal.Decimal) IncentiveSummary {
	return IncentiveSummary{
		DoctorID: doctorID,
		Count:    count,
		Accrued:  accrued,
		Paid:     paid,
		Pending:  decimal.Max(decimal.Zero, accrued.Sub(paid)),
	}
}
