package repositories

import (
	"context"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// PatientRepository defines operations for patient storage
type PatientRepository interface {
	Create(ctx context.Context, patient *entities.Patient) error
	GetByID(ctx context.Context, id string) (*entities.Patient, error)
}

// DoctorRepository defines operations for doctor storage
type DoctorRepository interface {
	Create(ctx context.Context, doctor *entities.Doctor) error
	GetByID(ctx context.Context, id string) (*entities.Doctor, error)
	List(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error)
}
