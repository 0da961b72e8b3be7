package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

var incentiveColumns = columns("id", "doctor_id", "invoice_id", "invoice_number", "incentive_amount", "paid", "payment_date", "created_at")

// IncentiveAdapter implements IncentiveRepository
type IncentiveAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.IncentiveRepository = (*IncentiveAdapter)(nil)

// NewIncentiveAdapter creates a new incentive adapter
func NewIncentiveAdapter(client *postgres.Client) *IncentiveAdapter {
	return &IncentiveAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// ListByDoctor returns a doctor's incentives, newest first
func (a *IncentiveAdapter) ListByDoctor(ctx context.Context, doctorID string, unpaidOnly bool) ([]*entities.DoctorIncentive, error) {
	ds := a.db.Select(incentiveColumns...).From("doctor_incentives").
		Where(goqu.Ex{"doctor_id": doctorID}).
		Order(goqu.I("created_at").Desc())
	if unpaidOnly {
		ds = ds.Where(goqu.Ex{"paid": false})
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to list incentives", err)
	}
	defer rows.Close()

	out := []*entities.DoctorIncentive{}
	for rows.Next() {
		inc := &entities.DoctorIncentive{}
		if err := rows.Scan(&inc.ID, &inc.DoctorID, &inc.InvoiceID, &inc.InvoiceNumber, &inc.IncentiveAmount, &inc.Paid, &inc.PaymentDate, &inc.CreatedAt); err != nil {
			return nil, queryError("failed to scan incentive", err)
		}
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to list incentives", err)
	}
	return out, nil
}

// Summary totals a doctor's accrued and paid incentives
func (a *IncentiveAdapter) Summary(ctx context.Context, doctorID string) (*entities.IncentiveSummary, error) {
	query, args, err := a.db.From("doctor_incentives").
		Select(
			goqu.COUNT("*"),
			goqu.L("COALESCE(SUM(incentive_amount), 0)"),
			goqu.L("COALESCE(SUM(CASE WHEN paid THEN incentive_amount ELSE 0 END), 0)"),
		).
		Where(goqu.Ex{"doctor_id": doctorID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var (
		count         int
		accrued, paid decimal.Decimal
	)
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count, &accrued, &paid); err != nil {
		return nil, queryError("failed to summarise incentives", err)
	}

	summary := entities.NewIncentiveSummary(doctorID, count, accrued, paid)
	return &summary, nil
}

// MarkPaid settles incentives atomically. If any id is unknown or already
// paid, nothing is updated.
func (a *IncentiveAdapter) MarkPaid(ctx context.Context, ids []string, at time.Time) (err error) {
	if len(ids) == 0 {
		return apperrors.NewValidationError("at least one incentive id is required")
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return queryError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := a.db.Update("doctor_incentives").
		Set(goqu.Record{"paid": true, "payment_date": at}).
		Where(goqu.Ex{"id": ids, "paid": false}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return queryError("failed to mark incentives paid", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return queryError("failed to get rows affected", err)
	}

	if affected != int64(len(ids)) {
		existing, cerr := a.countExisting(ctx, tx, ids)
		if cerr != nil {
			err = cerr
			return err
		}
		if existing != len(ids) {
			err = apperrors.NewNotFoundError(fmt.Sprintf("%d of %d incentives not found", len(ids)-existing, len(ids)))
			return err
		}
		err = apperrors.NewConflictError("one or more incentives are already paid")
		return err
	}

	if err = tx.Commit(); err != nil {
		return queryError("failed to commit incentive payment", err)
	}
	return nil
}

func (a *IncentiveAdapter) countExisting(ctx context.Context, tx *sql.Tx, ids []string) (int, error) {
	query, args, err := a.db.From("doctor_incentives").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var n int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, queryError("failed to count incentives", err)
	}
	return n, nil
}
