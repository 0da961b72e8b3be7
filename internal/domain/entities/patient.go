package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Patient represents a registered patient
type Patient struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Phone       string     `json:"phone" db:"phone"`
	Gender      string     `json:"gender,omitempty" db:"gender"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Address     string     `json:"address,omitempty" db:"address"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Doctor is either a clinic doctor who consults or an external doctor who refers scans
type Doctor struct {
	ID               string          `json:"id" db:"id"`
	Name             string          `json:"name" db:"name"`
	Specialization   string          `json:"specialization,omitempty" db:"specialization"`
	ConsultationFee  decimal.Decimal `json:"consultation_fee" db:"consultation_fee"`
	IncentivePercent decimal.Decimal `json:"incentive_percent" db:"incentive_percent"`
	IsReferrer       bool            `json:"is_referrer" db:"is_referrer"`
	IsActive         bool            `json:"is_active" db:"is_active"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}
