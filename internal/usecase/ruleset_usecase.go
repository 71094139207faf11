package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
	"github.com/shiftwise/shiftwise/internal/rulepack"
	"github.com/shiftwise/shiftwise/internal/service/logger"
)

// RuleSetUseCase manages the active compliance parameters per tenant. Every
// mutation writes a rule_set_changed audit entry carrying before and after
// values; configs are superseded, never deleted.
type RuleSetUseCase struct {
	rules  ports.RuleSetRepository
	audit  ports.AuditLogRepository
	packs  *rulepack.Pack
	logger logger.Logger
	now    func() time.Time
}

// NewRuleSetUseCase creates a rule set use case.
func NewRuleSetUseCase(
	rules ports.RuleSetRepository,
	audit ports.AuditLogRepository,
	packs *rulepack.Pack,
	log logger.Logger,
) *RuleSetUseCase {
	return &RuleSetUseCase{
		rules:  rules,
		audit:  audit,
		packs:  packs,
		logger: log,
		now:    time.Now,
	}
}

// Get returns the tenant's active rule set.
func (uc *RuleSetUseCase) Get(ctx context.Context, tenantID string) (*domain.RuleSetConfig, error) {
	cfg, err := uc.rules.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rule set: %w", err)
	}
	return cfg, nil
}

// Update applies a partial patch to the tenant's active rule set. The tenant
// must have been seeded first. Concurrent updates are last-write-wins.
func (uc *RuleSetUseCase) Update(ctx context.Context, tenantID string, patch domain.RuleSetPatch, actor string) (*domain.RuleSetConfig, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	cfg, err := uc.rules.GetActive(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule set for update: %w", err)
	}

	before := *cfg
	cfg.Apply(patch)
	cfg.UpdatedAt = uc.now().UTC()
	cfg.UpdatedBy = actor

	if err := uc.rules.Save(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save rule set: %w", err)
	}

	entry := &domain.ComplianceAuditLog{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Action:    domain.AuditRuleSetChanged,
		ActorUID:  actor,
		Timestamp: cfg.UpdatedAt,
		Details: domain.AuditDetails{
			RuleSetChanged: &domain.RuleSetChangedDetails{Before: &before, After: *cfg},
		},
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append rule_set_changed audit entry: %w", err)
	}

	uc.logger.Info(ctx, "Rule set updated", map[string]interface{}{
		"tenant_id": tenantID,
		"actor":     actor,
		"rule_set":  cfg.RuleSet,
	})
	return cfg, nil
}

// SeedDefault creates the tenant's rule set from the named built-in pack.
// Seeding an already-seeded tenant is a no-op returning the existing config.
func (uc *RuleSetUseCase) SeedDefault(ctx context.Context, tenantID, packName, actor string) (*domain.RuleSetConfig, error) {
	if existing, err := uc.rules.GetActive(ctx, tenantID); err == nil {
		return existing, nil
	} else if !domain.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing rule set: %w", err)
	}

	cfg, err := uc.packs.Defaults(packName)
	if err != nil {
		return nil, err
	}
	cfg.TenantID = tenantID
	cfg.UpdatedAt = uc.now().UTC()
	cfg.UpdatedBy = actor

	if err := uc.rules.Save(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to seed rule set: %w", err)
	}

	entry := &domain.ComplianceAuditLog{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Action:    domain.AuditRuleSetChanged,
		ActorUID:  actor,
		Timestamp: cfg.UpdatedAt,
		Details: domain.AuditDetails{
			RuleSetChanged: &domain.RuleSetChangedDetails{After: cfg},
		},
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append rule_set_changed audit entry: %w", err)
	}

	uc.logger.Info(ctx, "Rule set seeded", map[string]interface{}{
		"tenant_id": tenantID,
		"pack":      packName,
	})
	return &cfg, nil
}
