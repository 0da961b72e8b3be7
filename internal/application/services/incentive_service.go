package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// IncentiveService reads and settles referral incentives
type IncentiveService struct {
	repo    repositories.IncentiveRepository
	doctors repositories.DoctorRepository
}

// NewIncentiveService creates a new incentive service
func NewIncentiveService(repo repositories.IncentiveRepository, doctors repositories.DoctorRepository) *IncentiveService {
	return &IncentiveService{repo: repo, doctors: doctors}
}

// ListByDoctor returns a doctor's incentives, optionally only the unpaid ones
func (s *IncentiveService) ListByDoctor(ctx context.Context, doctorID string, unpaidOnly bool) ([]*entities.DoctorIncentive, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.repo.ListByDoctor(ctx, doctorID, unpaidOnly)
}

// Summary returns accrued, paid and pending totals for a doctor
func (s *IncentiveService) Summary(ctx context.Context, doctorID string) (*entities.IncentiveSummary, error) {
	doctor, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	summary.DoctorName = doctor.Name
	return summary, nil
}

// MarkPaid settles the given incentives together. Repeated ids count once.
func (s *IncentiveService) MarkPaid(ctx context.Context, ids []string) error {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		if err := uuid.Validate(id); err != nil {
			return apperrors.NewValidationError(fmt.Sprintf("invalid incentive id %q", id))
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return apperrors.NewValidationError("at least one incentive id is required")
	}

	if err := s.repo.MarkPaid(ctx, unique, time.Now().UTC()); err != nil {
		return err
	}

	observability.LoggerFromContext(ctx).Info().Strs("incentive_ids", unique).Msg("incentives paid")
	return nil
}
