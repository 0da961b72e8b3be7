package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/pricing"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

// DraftStore keeps draft bills in a CacheProvider as JSON.
// Every save refreshes the TTL, so only untouched drafts expire.
type DraftStore struct {
	cache providers.CacheProvider
	ttl   time.Duration
}

var _ providers.DraftStore = (*DraftStore)(nil)

// NewDraftStore creates a draft store
func NewDraftStore(cache providers.CacheProvider, ttl time.Duration) *DraftStore {
	return &DraftStore{cache: cache, ttl: ttl}
}

// DraftKey is the cache key of a visit's draft in one domain
func DraftKey(visitID string, domain entities.BillingDomain) string {
	return fmt.Sprintf("draft:%s:%s", domain, visitID)
}

// Get loads the open draft
func (s *DraftStore) Get(ctx context.Context, visitID string, domain entities.BillingDomain) (*pricing.DraftBill, error) {
	data, err := s.cache.Get(ctx, DraftKey(visitID, domain))
	if errors.Is(err, providers.ErrCacheMiss) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no open %s bill for visit %s", domain, visitID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load draft bill", err)
	}

	var draft pricing.DraftBill
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, apperrors.NewInternalError("failed to decode draft bill", err)
	}
	return &draft, nil
}

// Save stores the draft and resets its expiry
func (s *DraftStore) Save(ctx context.Context, draft *pricing.DraftBill) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return apperrors.NewInternalError("failed to encode draft bill", err)
	}
	if err := s.cache.Set(ctx, DraftKey(draft.VisitID, draft.Domain), data, s.ttl); err != nil {
		return apperrors.NewInternalError("failed to save draft bill", err)
	}
	return nil
}

// Delete discards the draft; deleting a missing draft is not an error
func (s *DraftStore) Delete(ctx context.Context, visitID string, domain entities.BillingDomain) error {
	if err := s.cache.Delete(ctx, DraftKey(visitID, domain)); err != nil {
		return apperrors.NewInternalError("failed to delete draft bill", err)
	}
	return nil
}
