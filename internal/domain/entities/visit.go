package entities

import (
	"time"
)

// Visit is one patient check-in with one doctor
type Visit struct {
	ID          string    `json:"id" db:"id"`
	PatientID   string    `json:"patient_id" db:"patient_id"`
	DoctorID    string    `json:"doctor_id" db:"doctor_id"`
	Complaint   string    `json:"complaint,omitempty" db:"complaint"`
	CheckedInAt time.Time `json:"checked_in_at" db:"checked_in_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VisitActions records per-visit confirmations that are not derivable from invoices or documents
type VisitActions struct {
	VisitID        string     `json:"visit_id" db:"visit_id"`
	FormFPrinted   bool       `json:"form_f_printed" db:"form_f_printed"`
	FormFPrintedAt *time.Time `json:"form_f_printed_at,omitempty" db:"form_f_printed_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}
