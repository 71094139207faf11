package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
	"github.com/shiftwise/shiftwise/internal/service/logger"
)

// ViolationUseCase exposes the ledger: listing, lookup and acknowledgment.
type ViolationUseCase struct {
	violations ports.ViolationRepository
	audit      ports.AuditLogRepository
	logger     logger.Logger
	now        func() time.Time
}

// NewViolationUseCase creates a violation use case.
func NewViolationUseCase(
	violations ports.ViolationRepository,
	audit ports.AuditLogRepository,
	log logger.Logger,
) *ViolationUseCase {
	return &ViolationUseCase{
		violations: violations,
		audit:      audit,
		logger:     log,
		now:        time.Now,
	}
}

// List returns violations matching the filter plus the unpaginated total.
func (uc *ViolationUseCase) List(ctx context.Context, tenantID string, filter domain.ViolationFilter) ([]*domain.ComplianceViolation, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	violations, total, err := uc.violations.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list violations: %w", err)
	}
	return violations, total, nil
}

// Get returns one violation by id.
func (uc *ViolationUseCase) Get(ctx context.Context, tenantID, id string) (*domain.ComplianceViolation, error) {
	violation, err := uc.violations.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get violation: %w", err)
	}
	return violation, nil
}

// Acknowledge stamps acknowledgedAt/acknowledgedBy on a violation and appends
// a violation_acknowledged audit entry. Acknowledgment is the only permitted
// mutation of a violation. Re-acknowledging an already-acknowledged violation
// is a no-op: the original stamp is kept and no second audit entry is
// written.
func (uc *ViolationUseCase) Acknowledge(ctx context.Context, tenantID, id, actor string) (*domain.ComplianceViolation, error) {
	at := uc.now().UTC()
	violation, changed, err := uc.violations.Acknowledge(ctx, tenantID, id, actor, at)
	if err != nil {
		return nil, fmt.Errorf("failed to acknowledge violation: %w", err)
	}
	if !changed {
		return violation, nil
	}

	entry := &domain.ComplianceAuditLog{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Action:    domain.AuditViolationAcknowledged,
		ActorUID:  actor,
		Timestamp: at,
		Details: domain.AuditDetails{
			ViolationAcknowledged: &domain.ViolationAcknowledgedDetails{
				ViolationID:   violation.ID,
				ViolationType: violation.Type,
			},
		},
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append violation_acknowledged audit entry: %w", err)
	}

	uc.logger.Info(ctx, "Violation acknowledged", map[string]interface{}{
		"tenant_id":    tenantID,
		"violation_id": id,
		"actor":        actor,
	})
	return violation, nil
}
