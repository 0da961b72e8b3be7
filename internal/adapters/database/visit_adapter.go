package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var (
	visitColumns        = columns("id", "patient_id", "doctor_id", "complaint", "checked_in_at", "updated_at")
	visitActionsColumns = columns("visit_id", "form_f_printed", "form_f_printed_at", "created_at", "updated_at")
)

// VisitAdapter implements VisitRepository and VisitActionsRepository
type VisitAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var (
	_ repositories.VisitRepository        = (*VisitAdapter)(nil)
	_ repositories.VisitActionsRepository = (*VisitAdapter)(nil)
)

// NewVisitAdapter creates a new visit adapter
func NewVisitAdapter(client *postgres.Client) *VisitAdapter {
	return &VisitAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts a visit
func (a *VisitAdapter) Create(ctx context.Context, v *entities.Visit) error {
	record := goqu.Record{
		"id":            v.ID,
		"patient_id":    v.PatientID,
		"doctor_id":     v.DoctorID,
		"complaint":     v.Complaint,
		"checked_in_at": v.CheckedInAt,
		"updated_at":    v.UpdatedAt,
	}

	query, args, err := a.db.Insert("visits").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to create visit", err)
	}
	return nil
}

// GetByID retrieves a visit by ID
func (a *VisitAdapter) GetByID(ctx context.Context, id string) (*entities.Visit, error) {
	query, args, err := a.db.Select(visitColumns...).From("visits").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	v := &entities.Visit{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.PatientID, &v.DoctorID, &v.Complaint, &v.CheckedInAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("visit %s not found", id), "failed to load visit")
	}
	return v, nil
}

// EnsureExists inserts the visit_actions row if it is missing
func (a *VisitAdapter) EnsureExists(ctx context.Context, visitID string) (bool, error) {
	now := time.Now().UTC()
	query, args, err := a.db.Insert("visit_actions").
		Rows(goqu.Record{
			"visit_id":       visitID,
			"form_f_printed": false,
			"created_at":     now,
			"updated_at":     now,
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build insert query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return false, queryError("failed to ensure visit actions", err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return false, queryError("failed to get rows affected", err)
	}
	return created > 0, nil
}

// Get retrieves the visit_actions row
func (a *VisitAdapter) Get(ctx context.Context, visitID string) (*entities.VisitActions, error) {
	query, args, err := a.db.Select(visitActionsColumns...).From("visit_actions").
		Where(goqu.Ex{"visit_id": visitID}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	va := &entities.VisitActions{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&va.VisitID, &va.FormFPrinted, &va.FormFPrintedAt, &va.CreatedAt, &va.UpdatedAt,
	)
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("visit actions for %s not found", visitID), "failed to load visit actions")
	}
	return va, nil
}

// SetFormFPrinted records the Form F print, creating the row when needed.
// The first print time is kept.
func (a *VisitAdapter) SetFormFPrinted(ctx context.Context, visitID string, at time.Time) error {
	query, args, err := a.db.Insert("visit_actions").
		Rows(goqu.Record{
			"visit_id":          visitID,
			"form_f_printed":    true,
			"form_f_printed_at": at,
			"created_at":        at,
			"updated_at":        at,
		}).
		OnConflict(goqu.DoUpdate("visit_id", goqu.Record{
			"form_f_printed":    true,
			"form_f_printed_at": goqu.L("COALESCE(visit_actions.form_f_printed_at, EXCLUDED.form_f_printed_at)"),
			"updated_at":        goqu.L("EXCLUDED.updated_at"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to record form f print", err)
	}
	return nil
}
