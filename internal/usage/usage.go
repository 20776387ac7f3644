// Package usage tracks billing activity per facility.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/opensource-health/heron/internal/domain"
)

// Service counts bills saved by a facility in a time window. The count
// feeds the recent_bill_count audit rule variable.
type Service struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewService creates a usage service.
func NewService(repo domain.Repository, cache domain.Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

// RecordBillSaved bumps the facility's rolling bill counter. Counter
// drift is tolerated; the repository stays the source of truth.
func (s *Service) RecordBillSaved(ctx context.Context, facilityID string) {
	if s.cache == nil {
		return
	}
	_, _ = s.cache.IncrementCounter(ctx, facilityID, "bills_saved", time.Hour)
}

// GetRecentBillCount returns the number of bills the facility saved
// within the window. This matches the rules.UsageGetter signature.
func (s *Service) GetRecentBillCount(ctx context.Context, facilityID string, windowSecs int) (int64, error) {
	if facilityID == "" {
		return 0, fmt.Errorf("facilityID is required")
	}
	if s.repo == nil {
		return 0, fmt.Errorf("no data source available")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)

	bills, err := s.repo.ListBillsSince(ctx, facilityID, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list bills: %w", err)
	}
	return int64(len(bills)), nil
}
