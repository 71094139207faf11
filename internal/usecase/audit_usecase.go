package usecase

import (
	"context"
	"fmt"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// AuditUseCase reads the append-only compliance trail. Writes happen only
// through the other use cases; there is no exposed append operation.
type AuditUseCase struct {
	audit ports.AuditLogRepository
}

// NewAuditUseCase creates an audit use case.
func NewAuditUseCase(audit ports.AuditLogRepository) *AuditUseCase {
	return &AuditUseCase{audit: audit}
}

// List returns trail entries matching the filter plus the unpaginated total.
func (uc *AuditUseCase) List(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]*domain.ComplianceAuditLog, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	entries, total, err := uc.audit.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return entries, total, nil
}

// VerifyChain walks the tenant's full trail in sequence order and recomputes
// every link. It returns the sequence number of the first broken entry, or 0
// when the chain is intact.
func (uc *AuditUseCase) VerifyChain(ctx context.Context, tenantID string) (int64, error) {
	const page = 500
	prevHash := ""
	offset := 0
	for {
		entries, _, err := uc.audit.List(ctx, tenantID, domain.AuditFilter{Limit: page, Offset: offset})
		if err != nil {
			return 0, fmt.Errorf("failed to walk audit chain: %w", err)
		}
		for _, entry := range entries {
			if entry.PrevHash != prevHash {
				return entry.Seq, nil
			}
			expected, err := domain.AuditEntryHash(entry)
			if err != nil {
				return 0, err
			}
			if entry.EntryHash != expected {
				return entry.Seq, nil
			}
			prevHash = entry.EntryHash
		}
		if len(entries) < page {
			return 0, nil
		}
		offset += page
	}
}
