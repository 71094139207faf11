package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// PostgresAuditLogRepository persists the append-only compliance trail.
// Entries are hash-chained per tenant; a database trigger additionally
// rejects UPDATE and DELETE on the table, so immutability is enforced at the
// storage layer, not just by this API surface.
type PostgresAuditLogRepository struct {
	db *sql.DB
}

// NewPostgresAuditLogRepository creates a PostgreSQL audit log repository.
func NewPostgresAuditLogRepository(db *sql.DB) ports.AuditLogRepository {
	return &PostgresAuditLogRepository{db: db}
}

// Append links the entry to the tenant's chain head and inserts it. A
// per-tenant advisory lock serializes concurrent appends so the chain never
// forks.
func (r *PostgresAuditLogRepository) Append(ctx context.Context, entry *domain.ComplianceAuditLog) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "audit:"+entry.TenantID); err != nil {
		return fmt.Errorf("failed to lock audit chain: %w", err)
	}

	var prevHash sql.NullString
	err = tx.QueryRowContext(ctx, `
		SELECT entry_hash FROM compliance_audit_logs
		WHERE tenant_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`, entry.TenantID).Scan(&prevHash)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read audit chain head: %w", err)
	}
	entry.PrevHash = prevHash.String

	entryHash, err := domain.AuditEntryHash(entry)
	if err != nil {
		return err
	}
	entry.EntryHash = entryHash

	detailsJSON, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO compliance_audit_logs (
			id, tenant_id, action, actor_uid, ts, details, prev_hash, entry_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`,
		entry.ID,
		entry.TenantID,
		string(entry.Action),
		entry.ActorUID,
		entry.Timestamp,
		detailsJSON,
		entry.PrevHash,
		entry.EntryHash,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit append: %w", err)
	}
	return nil
}

// List retrieves trail entries matching the filter in chain order (ascending
// sequence), so callers can verify link by link.
func (r *PostgresAuditLogRepository) List(ctx context.Context, tenantID string, filter domain.AuditFilter) ([]*domain.ComplianceAuditLog, int, error) {
	where, args := buildAuditWhere(tenantID, filter)
	argIndex := len(args) + 1

	query := `
		SELECT seq, id, tenant_id, action, actor_uid, ts, details, prev_hash, entry_hash
		FROM compliance_audit_logs ` + where + ` ORDER BY seq ASC`
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ComplianceAuditLog
	for rows.Next() {
		var entry domain.ComplianceAuditLog
		var detailsJSON []byte
		err := rows.Scan(
			&entry.Seq,
			&entry.ID,
			&entry.TenantID,
			&entry.Action,
			&entry.ActorUID,
			&entry.Timestamp,
			&detailsJSON,
			&entry.PrevHash,
			&entry.EntryHash,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating audit logs: %w", err)
	}

	countWhere, countArgs := buildAuditWhere(tenantID, filter)
	var total int
	countQuery := `SELECT COUNT(*) FROM compliance_audit_logs ` + countWhere
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	return entries, total, nil
}

func buildAuditWhere(tenantID string, filter domain.AuditFilter) (string, []interface{}) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	argIndex := 2

	if filter.Action != nil {
		conditions = append(conditions, fmt.Sprintf("action = $%d", argIndex))
		args = append(args, string(*filter.Action))
		argIndex++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("ts >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("ts < $%d", argIndex))
		args = append(args, *filter.To)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}
