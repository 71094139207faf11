// Package ports declares the persistence and collaborator interfaces the
// compliance use cases depend on. Adapters implement them; tests mock them.
package ports

import (
	"context"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
)

// RuleSetRepository stores the single active rule set per tenant.
type RuleSetRepository interface {
	// GetActive returns the tenant's active config or a NotFoundError when
	// the tenant has never been seeded.
	GetActive(ctx context.Context, tenantID string) (*domain.RuleSetConfig, error)
	// Save upserts the whole config. Last write wins at tenant scope.
	Save(ctx context.Context, cfg *domain.RuleSetConfig) error
}

// ViolationRepository is the violation ledger.
type ViolationRepository interface {
	// Record upserts violations by their deterministic identity. An existing
	// violation with the same id is left untouched (first detection wins).
	// The write must be atomic per identity. Returns the number of newly
	// inserted rows.
	Record(ctx context.Context, violations []domain.ComplianceViolation) (int, error)
	FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceViolation, error)
	List(ctx context.Context, tenantID string, filter domain.ViolationFilter) ([]*domain.ComplianceViolation, int, error)
	// Acknowledge stamps the violation once. The bool result is false when
	// the violation was already acknowledged (no state changed). Unknown ids
	// return a NotFoundError.
	Acknowledge(ctx context.Context, tenantID, id, actor string, at time.Time) (*domain.ComplianceViolation, bool, error)
	// CountBySeverity aggregates detections with detectedAt in [from, to).
	CountBySeverity(ctx context.Context, tenantID string, from, to time.Time) (domain.SeverityCounts, error)
	// CountByType aggregates detections with detectedAt in [from, to).
	CountByType(ctx context.Context, tenantID string, from, to time.Time) (map[domain.ViolationType]int, error)
}

// ReportRepository stores immutable report artifacts.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.ComplianceReport) error
	FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceReport, error)
}

// AuditLogRepository is the append-only compliance trail. No update or delete
// operation exists by design.
type AuditLogRepository interface {
	// Append links the entry into the tenant's hash chain and persists it.
	// Appends for one tenant are serialized by the implementation.
	Append(ctx context.Context, entry *domain.ComplianceAuditLog) error
	List(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]*domain.ComplianceAuditLog, int, error)
}

// TimeEntryProvider exposes the external time-entry stream, read-only.
type TimeEntryProvider interface {
	// ListEntries returns entries clocking in within [from, to), ordered by
	// clock-in. A nil userID selects all users of the tenant.
	ListEntries(ctx context.Context, tenantID string, userID *string, from, to time.Time) ([]domain.TimeEntry, error)
}
