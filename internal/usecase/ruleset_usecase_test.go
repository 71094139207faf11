package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/rulepack"
)

func activeConfig() *domain.RuleSetConfig {
	return &domain.RuleSetConfig{
		TenantID:                "tenant-1",
		RuleSet:                 "eu",
		DailyRestPeriodMinutes:  660,
		WeeklyRestPeriodMinutes: 1440,
		MaxDailyWorkingTimeMinutes:                 480,
		MaxDailyWorkingTimeWithCompensationMinutes: 600,
		MaxWeeklyWorkingTimeMinutes:                2880,
		BreakRequiredAfterMinutes:                  360,
		BreakDurationMinutes:                       30,
	}
}

func newRuleSetUseCase(rules *MockRuleSetRepository, audit *MockAuditLogRepository) *RuleSetUseCase {
	packs, _ := rulepack.LoadDefaults()
	uc := NewRuleSetUseCase(rules, audit, packs, noopLogger{})
	uc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return uc
}

func intp(v int) *int { return &v }

func TestRuleSetUseCase_UpdateWritesAuditWithBeforeAndAfter(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	rules.On("GetActive", mock.Anything, "tenant-1").Return(activeConfig(), nil)
	rules.On("Save", mock.Anything, mock.MatchedBy(func(cfg *domain.RuleSetConfig) bool {
		return cfg.DailyRestPeriodMinutes == 700 && cfg.UpdatedBy == "manager-1"
	})).Return(nil)
	audit.On("Append", mock.Anything, mock.MatchedBy(func(entry *domain.ComplianceAuditLog) bool {
		d := entry.Details.RuleSetChanged
		return entry.Action == domain.AuditRuleSetChanged &&
			d != nil && d.Before != nil &&
			d.Before.DailyRestPeriodMinutes == 660 &&
			d.After.DailyRestPeriodMinutes == 700
	})).Return(nil)

	updated, err := uc.Update(context.Background(), "tenant-1",
		domain.RuleSetPatch{DailyRestPeriodMinutes: intp(700)}, "manager-1")
	assert.NoError(t, err)
	assert.Equal(t, 700, updated.DailyRestPeriodMinutes)
	// Untouched fields keep their values.
	assert.Equal(t, 480, updated.MaxDailyWorkingTimeMinutes)
	rules.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestRuleSetUseCase_UpdateRejectsInvalidPatch(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	tests := []struct {
		name  string
		patch domain.RuleSetPatch
	}{
		{name: "negative minutes", patch: domain.RuleSetPatch{DailyRestPeriodMinutes: intp(-10)}},
		{name: "zero minutes", patch: domain.RuleSetPatch{BreakDurationMinutes: intp(0)}},
		{name: "half a second tier", patch: domain.RuleSetPatch{BreakRequiredAfterMinutes2: intp(540)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Update(context.Background(), "tenant-1", tt.patch, "manager-1")
			assert.True(t, domain.IsValidation(err))
		})
	}
	rules.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRuleSetUseCase_UpdateUnseededTenant(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	rules.On("GetActive", mock.Anything, "tenant-1").
		Return(nil, &domain.NotFoundError{Resource: "rule set", ID: "tenant-1"})

	_, err := uc.Update(context.Background(), "tenant-1",
		domain.RuleSetPatch{DailyRestPeriodMinutes: intp(700)}, "manager-1")
	assert.True(t, domain.IsNotFound(err))
}

func TestRuleSetUseCase_SeedDefault(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	rules.On("GetActive", mock.Anything, "tenant-1").
		Return(nil, &domain.NotFoundError{Resource: "rule set", ID: "tenant-1"})
	rules.On("Save", mock.Anything, mock.MatchedBy(func(cfg *domain.RuleSetConfig) bool {
		return cfg.TenantID == "tenant-1" && cfg.RuleSet == "de" &&
			cfg.BreakRequiredAfterMinutes2 != nil
	})).Return(nil)
	audit.On("Append", mock.Anything, mock.MatchedBy(func(entry *domain.ComplianceAuditLog) bool {
		d := entry.Details.RuleSetChanged
		// Seeding has no predecessor config.
		return entry.Action == domain.AuditRuleSetChanged && d != nil && d.Before == nil
	})).Return(nil)

	cfg, err := uc.SeedDefault(context.Background(), "tenant-1", "de", "manager-1")
	assert.NoError(t, err)
	assert.Equal(t, "de", cfg.RuleSet)
	rules.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestRuleSetUseCase_SeedTwiceKeepsExisting(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	existing := activeConfig()
	rules.On("GetActive", mock.Anything, "tenant-1").Return(existing, nil)

	cfg, err := uc.SeedDefault(context.Background(), "tenant-1", "de", "manager-1")
	assert.NoError(t, err)
	assert.Equal(t, existing, cfg)
	rules.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestRuleSetUseCase_SeedUnknownPack(t *testing.T) {
	rules := new(MockRuleSetRepository)
	audit := new(MockAuditLogRepository)
	uc := newRuleSetUseCase(rules, audit)

	rules.On("GetActive", mock.Anything, "tenant-1").
		Return(nil, &domain.NotFoundError{Resource: "rule set", ID: "tenant-1"})

	_, err := uc.SeedDefault(context.Background(), "tenant-1", "atlantis", "manager-1")
	assert.True(t, domain.IsNotFound(err))
	rules.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
