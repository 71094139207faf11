package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shiftwise/shiftwise/internal/domain"
)

func acknowledgedViolation(at time.Time, by string) *domain.ComplianceViolation {
	return &domain.ComplianceViolation{
		ID:             "v-1",
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Type:           domain.ViolationBreakMissing,
		Severity:       domain.SeverityError,
		AcknowledgedAt: &at,
		AcknowledgedBy: &by,
	}
}

func TestViolationUseCase_Acknowledge(t *testing.T) {
	violations := new(MockViolationRepository)
	audit := new(MockAuditLogRepository)
	uc := NewViolationUseCase(violations, audit, noopLogger{})
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	expected := acknowledgedViolation(now, "manager-1")
	violations.On("Acknowledge", mock.Anything, "tenant-1", "v-1", "manager-1", now).
		Return(expected, true, nil)
	audit.On("Append", mock.Anything, mock.MatchedBy(func(entry *domain.ComplianceAuditLog) bool {
		return entry.Action == domain.AuditViolationAcknowledged &&
			entry.TenantID == "tenant-1" &&
			entry.ActorUID == "manager-1" &&
			entry.Details.ViolationAcknowledged != nil &&
			entry.Details.ViolationAcknowledged.ViolationID == "v-1"
	})).Return(nil)

	result, err := uc.Acknowledge(context.Background(), "tenant-1", "v-1", "manager-1")
	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	violations.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestViolationUseCase_ReacknowledgeIsNoop(t *testing.T) {
	violations := new(MockViolationRepository)
	audit := new(MockAuditLogRepository)
	uc := NewViolationUseCase(violations, audit, noopLogger{})

	originalAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	existing := acknowledgedViolation(originalAt, "manager-1")
	violations.On("Acknowledge", mock.Anything, "tenant-1", "v-1", "manager-2", mock.Anything).
		Return(existing, false, nil)

	result, err := uc.Acknowledge(context.Background(), "tenant-1", "v-1", "manager-2")
	assert.NoError(t, err)
	// The original stamp survives and no second trail entry is written.
	assert.Equal(t, originalAt, *result.AcknowledgedAt)
	assert.Equal(t, "manager-1", *result.AcknowledgedBy)
	audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestViolationUseCase_AcknowledgeNotFound(t *testing.T) {
	violations := new(MockViolationRepository)
	audit := new(MockAuditLogRepository)
	uc := NewViolationUseCase(violations, audit, noopLogger{})

	violations.On("Acknowledge", mock.Anything, "tenant-1", "missing", "manager-1", mock.Anything).
		Return(nil, false, &domain.NotFoundError{Resource: "violation", ID: "missing"})

	_, err := uc.Acknowledge(context.Background(), "tenant-1", "missing", "manager-1")
	assert.True(t, domain.IsNotFound(err))
	audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestViolationUseCase_ListPaginationBounds(t *testing.T) {
	tests := []struct {
		name          string
		requested     int
		expectedLimit int
	}{
		{name: "zero defaults", requested: 0, expectedLimit: 20},
		{name: "negative defaults", requested: -5, expectedLimit: 20},
		{name: "kept when in range", requested: 50, expectedLimit: 50},
		{name: "capped", requested: 500, expectedLimit: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := new(MockViolationRepository)
			uc := NewViolationUseCase(violations, new(MockAuditLogRepository), noopLogger{})

			violations.On("List", mock.Anything, "tenant-1", mock.MatchedBy(func(f domain.ViolationFilter) bool {
				return f.Limit == tt.expectedLimit
			})).Return([]*domain.ComplianceViolation{}, 0, nil)

			_, _, err := uc.List(context.Background(), "tenant-1", domain.ViolationFilter{Limit: tt.requested})
			assert.NoError(t, err)
			violations.AssertExpectations(t)
		})
	}
}

func TestViolationUseCase_Get(t *testing.T) {
	violations := new(MockViolationRepository)
	uc := NewViolationUseCase(violations, new(MockAuditLogRepository), noopLogger{})

	violations.On("FindByID", mock.Anything, "tenant-1", "missing").
		Return(nil, &domain.NotFoundError{Resource: "violation", ID: "missing"})

	_, err := uc.Get(context.Background(), "tenant-1", "missing")
	assert.True(t, domain.IsNotFound(err))
}
