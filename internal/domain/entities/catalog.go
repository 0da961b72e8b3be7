package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is a priced entry that can be billed: a medicine, a lab test or a scan.
// Prices are tax inclusive.
type CatalogItem struct {
	ID             string          `json:"id" db:"id"`
	Domain         BillingDomain   `json:"domain" db:"domain"`
	Name           string          `json:"name" db:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent" db:"tax_rate_percent"`
	HSNCode        string          `json:"hsn_code,omitempty" db:"hsn_code"`
	Stock          *int            `json:"stock,omitempty" db:"stock"`             // pharmacy only
	FormFNeeded    bool            `json:"form_f_needed" db:"form_f_needed"`       // ultrasound only
	IsActive       bool            `json:"is_active" db:"is_active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}
