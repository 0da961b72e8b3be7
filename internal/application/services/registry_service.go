package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// RegistryService registers patients, doctors and visits
type RegistryService struct {
	patients repositories.PatientRepository
	doctors  repositories.DoctorRepository
	visits   repositories.VisitRepository
}

// NewRegistryService creates a new registry service
func NewRegistryService(
	patients repositories.PatientRepository,
	doctors repositories.DoctorRepository,
	visits repositories.VisitRepository,
) *RegistryService {
	return &RegistryService{patients: patients, doctors: doctors, visits: visits}
}

// RegisterPatient stores a new patient
func (s *RegistryService) RegisterPatient(ctx context.Context, p *entities.Patient) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperrors.NewValidationError("patient name is required")
	}
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	return s.patients.Create(ctx, p)
}

// GetPatient returns a patient by ID
func (s *RegistryService) GetPatient(ctx context.Context, id string) (*entities.Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// RegisterDoctor stores a consulting or referring doctor
func (s *RegistryService) RegisterDoctor(ctx context.Context, d *entities.Doctor) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperrors.NewValidationError("doctor name is required")
	}
	if d.ConsultationFee.IsNegative() {
		return apperrors.NewValidationError("consultation fee must not be negative")
	}
	if d.IncentivePercent.IsNegative() || d.IncentivePercent.GreaterThan(hundredPercent) {
		return apperrors.NewValidationError("incentive percent must be between 0 and 100")
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.IsActive = true
	d.CreatedAt = time.Now().UTC()
	return s.doctors.Create(ctx, d)
}

// GetDoctor returns a doctor by ID
func (s *RegistryService) GetDoctor(ctx context.Context, id string) (*entities.Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// ListDoctors returns active doctors, optionally only referrers
func (s *RegistryService) ListDoctors(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error) {
	return s.doctors.List(ctx, referrersOnly)
}

// CheckIn opens a visit of a patient to a doctor
func (s *RegistryService) CheckIn(ctx context.Context, patientID, doctorID, complaint string) (*entities.Visit, error) {
	if patientID == "" || doctorID == "" {
		return nil, apperrors.NewValidationError("patient id and doctor id are required")
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	visit := &entities.Visit{
		ID:          uuid.NewString(),
		PatientID:   patientID,
		DoctorID:    doctorID,
		Complaint:   strings.TrimSpace(complaint),
		CheckedInAt: now,
		UpdatedAt:   now,
	}
	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, err
	}
	return visit, nil
}

// GetVisit returns a visit by ID
func (s *RegistryService) GetVisit(ctx context.Context, id string) (*entities.Visit, error) {
	return s.visits.GetByID(ctx, id)
}
