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

var doctorColumns = columns("id", "name", "specialization", "consultation_fee", "incentive_percent", "is_referrer", "is_active", "created_at")

// DoctorAdapter implements DoctorRepository
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.DoctorRepository = (*DoctorAdapter)(nil)

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) *DoctorAdapter {
	return &DoctorAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts a doctor
func (a *DoctorAdapter) Create(ctx context.Context, d *entities.Doctor) error {
	record := goqu.Record{
		"id":                d.ID,
		"name":              d.Name,
		"specialization":    d.Specialization,
		"consultation_fee":  d.ConsultationFee,
		"incentive_percent": d.IncentivePercent,
		"is_referrer":       d.IsReferrer,
		"is_active":         d.IsActive,
		"created_at":        d.CreatedAt,
	}

	query, args, err := a.db.Insert("doctors").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to create doctor", err)
	}
	return nil
}

// GetByID retrieves a doctor by ID
func (a *DoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	query, args, err := a.db.Select(doctorColumns...).From("doctors").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	d, err := scanDoctor(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("doctor %s not found", id), "failed to load doctor")
	}
	return d, nil
}

// List returns active doctors ordered by name
func (a *DoctorAdapter) List(ctx context.Context, referrersOnly bool) ([]*entities.Doctor, error) {
	ds := a.db.Select(doctorColumns...).From("doctors").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("name").Asc())
	if referrersOnly {
		ds = ds.Where(goqu.Ex{"is_referrer": true})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to list doctors", err)
	}
	defer rows.Close()

	doctors := []*entities.Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, queryError("failed to scan doctor", err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to list doctors", err)
	}
	return doctors, nil
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	d := &entities.Doctor{}
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.ConsultationFee, &d.IncentivePercent, &d.IsReferrer, &d.IsActive, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}
