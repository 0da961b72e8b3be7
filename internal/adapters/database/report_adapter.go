package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

const dailyRevenueQuery = `
SELECT domain,
       COUNT(*)                           AS invoice_count,
       COALESCE(SUM(total_amount), 0)     AS subtotal,
       COALESCE(SUM(discounted_total), 0) AS discounted_total,
       COALESCE(SUM(gst_amount), 0)       AS gst_amount
FROM invoices
WHERE created_at >= $1 AND created_at < $2
GROUP BY domain
ORDER BY domain`

const gstBreakdownQuery = `
SELECT ii.tax_rate_percent,
       ii.hsn_code,
       COALESCE(SUM(ii.final_price - ii.gst_amount), 0) AS taxable_value,
       COALESCE(SUM(ii.gst_amount), 0)                  AS gst_amount,
       COALESCE(SUM(ii.final_price), 0)                 AS gross_amount
FROM invoice_items ii
JOIN invoices i ON i.id = ii.invoice_id
WHERE i.created_at >= $1 AND i.created_at < $2
GROUP BY ii.tax_rate_percent, ii.hsn_code
ORDER BY ii.tax_rate_percent, ii.hsn_code`

const incentiveSummariesQuery = `
SELECT d.id                                                                   AS doctor_id,
       d.name                                                                 AS doctor_name,
       COUNT(di.id)                                                           AS count,
       COALESCE(SUM(di.incentive_amount), 0)                                  AS accrued,
       COALESCE(SUM(CASE WHEN di.paid THEN di.incentive_amount ELSE 0 END), 0) AS paid
FROM doctors d
JOIN doctor_incentives di ON di.doctor_id = d.id
GROUP BY d.id, d.name
ORDER BY d.name`

// ReportAdapter implements ReportRepository with sqlx struct scanning
type ReportAdapter struct {
	db *sqlx.DB
}

var _ repositories.ReportRepository = (*ReportAdapter)(nil)

// NewReportAdapter creates a new report adapter
func NewReportAdapter(client *postgres.Client) *ReportAdapter {
	return &ReportAdapter{db: client.Sqlx()}
}

// DailyRevenue totals invoices created on day, per domain. day is
// truncated to midnight in its own location.
func (a *ReportAdapter) DailyRevenue(ctx context.Context, day time.Time) ([]entities.DailyDomainRevenue, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	rows := []entities.DailyDomainRevenue{}
	if err := a.db.SelectContext(ctx, &rows, dailyRevenueQuery, start, end); err != nil {
		return nil, apperrors.NewPersistenceError("failed to run daily revenue report", err)
	}
	return rows, nil
}

// GSTBreakdown groups tax collected in [from, to) by rate and HSN code
func (a *ReportAdapter) GSTBreakdown(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error) {
	rows := []entities.GSTBreakdownRow{}
	if err := a.db.SelectContext(ctx, &rows, gstBreakdownQuery, from, to); err != nil {
		return nil, apperrors.NewPersistenceError("failed to run gst report", err)
	}
	return rows, nil
}

type incentiveSummaryRow struct {
	DoctorID   string          `db:"doctor_id"`
	DoctorName string          `db:"doctor_name"`
	Count      int             `db:"count"`
	Accrued    decimal.Decimal `db:"accrued"`
	Paid       decimal.Decimal `db:"paid"`
}

// IncentiveSummaries totals incentives for every doctor that has any
func (a *ReportAdapter) IncentiveSummaries(ctx context.Context) ([]entities.IncentiveSummary, error) {
	var rows []incentiveSummaryRow
	if err := a.db.SelectContext(ctx, &rows, incentiveSummariesQuery); err != nil {
		return nil, apperrors.NewPersistenceError("failed to run incentive report", err)
	}

	out := make([]entities.IncentiveSummary, 0, len(rows))
	for _, r := range rows {
		s := entities.NewIncentiveSummary(r.DoctorID, r.Count, r.Accrued, r.Paid)
		s.DoctorName = r.DoctorName
		out = append(out, s)
	}
	return out, nil
}
