package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
)

// IncentiveRepository defines operations for referral incentives.
// Incentives are created inside invoice finalization, not through this interface.
type IncentiveRepository interface {
	ListByDoctor(ctx context.Context, doctorID string, unpaidOnly bool) ([]*entities.DoctorIncentive, error)
	Summary(ctx context.Context, doctorID string) (*entities.IncentiveSummary, error)
	// MarkPaid settles the given incentives. An incentive that is already
	// paid makes the whole call fail with a conflict.
	MarkPaid(ctx context.Context, ids []string, at time.Time) error
}

// ReportRepository runs the accounting roll-ups
type ReportRepository interface {
	DailyRevenue(ctx context.Context, day time.Time) ([]entities.DailyDomainRevenue, error)
	GSTBreakdown(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error)
	IncentiveSummaries(ctx context.Context) ([]entities.IncentiveSummary, error)
}
