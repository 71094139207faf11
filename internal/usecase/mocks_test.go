package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/service/logger"
)

// Shared mocks for the use case tests.

type noopLogger struct{}

func (noopLogger) Info(ctx context.Context, message string, fields map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, message string, fields map[string]interface{})  {}
func (noopLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {}
func (noopLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
}
func (l noopLogger) WithFields(fields map[string]interface{}) logger.Logger { return l }

type MockRuleSetRepository struct {
	mock.Mock
}

func (m *MockRuleSetRepository) GetActive(ctx context.Context, tenantID string) (*domain.RuleSetConfig, error) {
	args := m.Called(ctx, tenantID)
	if cfg := args.Get(0); cfg != nil {
		return cfg.(*domain.RuleSetConfig), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRuleSetRepository) Save(ctx context.Context, cfg *domain.RuleSetConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

type MockViolationRepository struct {
	mock.Mock
}

func (m *MockViolationRepository) Record(ctx context.Context, violations []domain.ComplianceViolation) (int, error) {
	args := m.Called(ctx, violations)
	return args.Int(0), args.Error(1)
}

func (m *MockViolationRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceViolation, error) {
	args := m.Called(ctx, tenantID, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.ComplianceViolation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockViolationRepository) List(ctx context.Context, tenantID string, filter domain.ViolationFilter) ([]*domain.ComplianceViolation, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if v := args.Get(0); v != nil {
		return v.([]*domain.ComplianceViolation), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *MockViolationRepository) Acknowledge(ctx context.Context, tenantID, id, actor string, at time.Time) (*domain.ComplianceViolation, bool, error) {
	args := m.Called(ctx, tenantID, id, actor, at)
	if v := args.Get(0); v != nil {
		return v.(*domain.ComplianceViolation), args.Bool(1), args.Error(2)
	}
	return nil, args.Bool(1), args.Error(2)
}

func (m *MockViolationRepository) CountBySeverity(ctx context.Context, tenantID string, from, to time.Time) (domain.SeverityCounts, error) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(domain.SeverityCounts), args.Error(1)
}

func (m *MockViolationRepository) CountByType(ctx context.Context, tenantID string, from, to time.Time) (map[domain.ViolationType]int, error) {
	args := m.Called(ctx, tenantID, from, to)
	if v := args.Get(0); v != nil {
		return v.(map[domain.ViolationType]int), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.ComplianceReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceReport, error) {
	args := m.Called(ctx, tenantID, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.ComplianceReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Append(ctx context.Context, entry *domain.ComplianceAuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditLogRepository) List(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]*domain.ComplianceAuditLog, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if entries := args.Get(0); entries != nil {
		return entries.([]*domain.ComplianceAuditLog), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

type MockTimeEntryProvider struct {
	mock.Mock
}

func (m *MockTimeEntryProvider) ListEntries(ctx context.Context, tenantID string, userID *string, from, to time.Time) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, tenantID, userID, from, to)
	if entries := args.Get(0); entries != nil {
		return entries.([]domain.TimeEntry), args.Error(1)
	}
	return nil, args.Error(1)
}
