package services

import (
	"context"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// DateLayout is the calendar date format used by reports
const DateLayout = "2006-01-02"

// ReportService runs the accounting roll-ups
type ReportService struct {
	repo repositories.ReportRepository
}

// NewReportService creates a new report service
func NewReportService(repo repositories.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Daily returns revenue per domain for day
func (s *ReportService) Daily(ctx context.Context, day time.Time) (*entities.DailyReport, error) {
	rows, err := s.repo.DailyRevenue(ctx, day)
	if err != nil {
		return nil, err
	}
	report := entities.NewDailyReport(day.Format(DateLayout), rows)
	return &report, nil
}

// GST returns tax collected by rate and HSN code between two dates, both inclusive
func (s *ReportService) GST(ctx context.Context, from, to time.Time) ([]entities.GSTBreakdownRow, error) {
	start := truncateDay(from)
	end := truncateDay(to).AddDate(0, 0, 1)
	if !end.After(start) {
		return nil, apperrors.NewValidationError("report end date is before its start date")
	}
	return s.repo.GSTBreakdown(ctx, start, end)
}

// Incentives returns the incentive summary of every referring doctor
func (s *ReportService) Incentives(ctx context.Context) ([]entities.IncentiveSummary, error) {
	return s.repo.IncentiveSummaries(ctx)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
