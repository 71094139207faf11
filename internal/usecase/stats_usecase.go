package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// StatsUseCase computes the rolling dashboard counters from the ledger. No
// caching: stats are recomputed per call, which is fine for typical tenant
// volumes (hundreds to thousands of violations).
type StatsUseCase struct {
	violations ports.ViolationRepository
	// horizonDays bounds the by-type aggregation; it comes from configuration
	// and is echoed back in the response.
	horizonDays int
	now         func() time.Time
}

// NewStatsUseCase creates a stats use case. horizonDays is the configured
// violationsByType window.
func NewStatsUseCase(violations ports.ViolationRepository, horizonDays int) *StatsUseCase {
	return &StatsUseCase{
		violations:  violations,
		horizonDays: horizonDays,
		now:         time.Now,
	}
}

// GetStats returns today/this-week/this-month severity buckets plus the
// by-type counts over the configured horizon. Buckets are anchored at the
// calling day's local boundaries: midnight-to-midnight, Monday-start week,
// calendar month.
func (uc *StatsUseCase) GetStats(ctx context.Context, tenantID string) (*domain.ComplianceStats, error) {
	now := uc.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := startOfWeek(dayStart)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := uc.violations.CountBySeverity(ctx, tenantID, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's violations: %w", err)
	}
	thisWeek, err := uc.violations.CountBySeverity(ctx, tenantID, weekStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count this week's violations: %w", err)
	}
	thisMonth, err := uc.violations.CountBySeverity(ctx, tenantID, monthStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count this month's violations: %w", err)
	}

	horizonStart := dayStart.AddDate(0, 0, -uc.horizonDays)
	byType, err := uc.violations.CountByType(ctx, tenantID, horizonStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count violations by type: %w", err)
	}

	return &domain.ComplianceStats{
		Today:            today,
		ThisWeek:         thisWeek,
		ThisMonth:        thisMonth,
		ViolationsByType: byType,
		HorizonDays:      uc.horizonDays,
	}, nil
}

// startOfWeek returns the Monday 00:00 of the week containing dayStart.
func startOfWeek(dayStart time.Time) time.Time {
	offset := int(dayStart.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return dayStart.AddDate(0, 0, -offset)
}
