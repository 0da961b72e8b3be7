package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var patientColumns = columns("id", "name", "phone", "gender", "date_of_birth", "address", "created_at", "updated_at")

// PatientAdapter implements PatientRepository
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PatientRepository = (*PatientAdapter)(nil)

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) *PatientAdapter {
	return &PatientAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts a patient
func (a *PatientAdapter) Create(ctx context.Context, p *entities.Patient) error {
	record := goqu.Record{
		"id":            p.ID,
		"name":          p.Name,
		"phone":         p.Phone,
		"gender":        p.Gender,
		"date_of_birth": p.DateOfBirth,
		"address":       p.Address,
		"created_at":    p.CreatedAt,
		"updated_at":    p.UpdatedAt,
	}

	query, args, err := a.db.Insert("patients").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to create patient", err)
	}
	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).From("patients").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	p := &entities.Patient{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Phone, &p.Gender, &p.DateOfBirth, &p.Address, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("patient %s not found", id), "failed to load patient")
	}
	return p, nil
}
