package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/detector"
	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
	"github.com/shiftwise/shiftwise/internal/service/logger"
)

// ComplianceUseCase drives violation detection: it pulls entries from the
// time-entry stream, evaluates them against the tenant's active rule set and
// records the findings in the ledger.
type ComplianceUseCase struct {
	rules        ports.RuleSetRepository
	violations   ports.ViolationRepository
	audit        ports.AuditLogRepository
	entries      ports.TimeEntryProvider
	engine       *detector.Engine
	logger       logger.Logger
	maxRangeDays int
	now          func() time.Time
}

// NewComplianceUseCase creates a compliance use case.
func NewComplianceUseCase(
	rules ports.RuleSetRepository,
	violations ports.ViolationRepository,
	audit ports.AuditLogRepository,
	entries ports.TimeEntryProvider,
	engine *detector.Engine,
	log logger.Logger,
	maxRangeDays int,
) *ComplianceUseCase {
	return &ComplianceUseCase{
		rules:        rules,
		violations:   violations,
		audit:        audit,
		entries:      entries,
		engine:       engine,
		logger:       log,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
	}
}

// CheckCompliance runs an explicit manual check over a user (or the whole
// tenant) and date range. It records detected violations in the ledger and
// appends a manual_check audit entry.
func (uc *ComplianceUseCase) CheckCompliance(ctx context.Context, tenantID string, userID *string, from, to time.Time, actor string) ([]domain.ComplianceViolation, error) {
	if err := uc.validateRange(from, to); err != nil {
		return nil, err
	}

	detected, err := uc.runDetection(ctx, tenantID, userID, from, to)
	if err != nil {
		return nil, err
	}

	details := &domain.ManualCheckDetails{
		PeriodStart:     from,
		PeriodEnd:       to,
		ViolationsFound: len(detected),
	}
	if userID != nil {
		details.UserID = *userID
	}
	entry := &domain.ComplianceAuditLog{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Action:    domain.AuditManualCheck,
		ActorUID:  actor,
		Timestamp: uc.now().UTC(),
		Details:   domain.AuditDetails{ManualCheck: details},
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append manual_check audit entry: %w", err)
	}

	return detected, nil
}

// CheckOnEvent runs detection from a triggering workflow (clock-in,
// clock-out, shift completion). A failed compliance check must never block
// the primary time-tracking action, so failures are logged and swallowed
// here; the detections themselves still surface through the ledger.
func (uc *ComplianceUseCase) CheckOnEvent(ctx context.Context, tenantID string, userID *string, from, to time.Time) {
	if _, err := uc.runDetection(ctx, tenantID, userID, from, to); err != nil {
		fields := map[string]interface{}{
			"tenant_id": tenantID,
			"from":      from,
			"to":        to,
		}
		if userID != nil {
			fields["user_id"] = *userID
		}
		uc.logger.Error(ctx, "Event-triggered compliance check failed", err, fields)
	}
}

// runDetection loads rules and entries, evaluates, and records results. A
// detection returning no violations is success.
func (uc *ComplianceUseCase) runDetection(ctx context.Context, tenantID string, userID *string, from, to time.Time) ([]domain.ComplianceViolation, error) {
	rules, err := uc.rules.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set: %w", err)
	}

	entries, err := uc.entries.ListEntries(ctx, tenantID, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load time entries: %w", err)
	}

	detected := uc.engine.Detect(tenantID, entries, *rules, detector.Window{Start: from, End: to})
	if len(detected) == 0 {
		return nil, nil
	}

	inserted, err := uc.violations.Record(ctx, detected)
	if err != nil {
		return nil, fmt.Errorf("failed to record violations: %w", err)
	}

	uc.logger.Info(ctx, "Compliance detection completed", map[string]interface{}{
		"tenant_id": tenantID,
		"detected":  len(detected),
		"new":       inserted,
	})
	return detected, nil
}

func (uc *ComplianceUseCase) validateRange(from, to time.Time) error {
	if !from.Before(to) {
		return &domain.InvalidRangeError{Reason: "period start must precede period end"}
	}
	if to.Sub(from) > time.Duration(uc.maxRangeDays)*24*time.Hour {
		return &domain.InvalidRangeError{Reason: fmt.Sprintf("period exceeds the maximum of %d days", uc.maxRangeDays)}
	}
	return nil
}
