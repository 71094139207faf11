package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// PostgresViolationRepository is the ledger backing store. Upserts rely on
// the deterministic violation identity as primary key: a single conditional
// insert per violation makes concurrent duplicate detections safe without a
// read-then-write sequence.
type PostgresViolationRepository struct {
	db *sql.DB
}

// NewPostgresViolationRepository creates a PostgreSQL violation repository.
func NewPostgresViolationRepository(db *sql.DB) ports.ViolationRepository {
	return &PostgresViolationRepository{db: db}
}

const violationColumns = `
	id, tenant_id, user_id, violation_type, severity, detected_at,
	period_start, period_end, rule_set, expected, actual, affected_entries,
	acknowledged_at, acknowledged_by
`

// Record inserts violations, skipping identities that already exist. First
// detection wins; later re-detections are no-ops, which prevents timestamp
// or detail drift on idempotent re-runs.
func (r *PostgresViolationRepository) Record(ctx context.Context, violations []domain.ComplianceViolation) (int, error) {
	query := `
		INSERT INTO compliance_violations (
			id, tenant_id, user_id, violation_type, severity, detected_at,
			period_start, period_end, rule_set, expected, actual, affected_entries
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	inserted := 0
	for _, v := range violations {
		affected, err := json.Marshal(v.Details.AffectedEntries)
		if err != nil {
			return inserted, fmt.Errorf("failed to marshal affected entries: %w", err)
		}

		result, err := r.db.ExecContext(ctx, query,
			v.ID,
			v.TenantID,
			v.UserID,
			string(v.Type),
			string(v.Severity),
			v.DetectedAt,
			v.PeriodStart,
			v.PeriodEnd,
			v.RuleSet,
			v.Details.Expected,
			v.Details.Actual,
			affected,
		)
		if err != nil {
			return inserted, fmt.Errorf("failed to record violation: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(rows)
	}
	return inserted, nil
}

// FindByID retrieves one violation by its identity.
func (r *PostgresViolationRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceViolation, error) {
	query := `SELECT ` + violationColumns + ` FROM compliance_violations WHERE tenant_id = $1 AND id = $2`
	row := r.db.QueryRowContext(ctx, query, tenantID, id)
	violation, err := scanViolation(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "violation", ID: id}
		}
		return nil, fmt.Errorf("failed to find violation: %w", err)
	}
	return violation, nil
}

// List retrieves violations matching the filter, newest detection first.
func (r *PostgresViolationRepository) List(ctx context.Context, tenantID string, filter domain.ViolationFilter) ([]*domain.ComplianceViolation, int, error) {
	where, args := buildViolationWhere(tenantID, filter)
	argIndex := len(args) + 1

	query := `SELECT ` + violationColumns + ` FROM compliance_violations ` + where +
		` ORDER BY detected_at DESC, id`
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
		return nil, 0, fmt.Errorf("failed to query violations: %w", err)
	}
	defer rows.Close()

	var violations []*domain.ComplianceViolation
	for rows.Next() {
		violation, err := scanViolation(rows.Scan)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan violation: %w", err)
		}
		violations = append(violations, violation)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating violations: %w", err)
	}

	countWhere, countArgs := buildViolationWhere(tenantID, filter)
	var total int
	countQuery := `SELECT COUNT(*) FROM compliance_violations ` + countWhere
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count violations: %w", err)
	}

	return violations, total, nil
}

// Acknowledge stamps the violation exactly once. The conditional update only
// touches unacknowledged rows; an already-acknowledged violation is returned
// unchanged with changed=false.
func (r *PostgresViolationRepository) Acknowledge(ctx context.Context, tenantID, id, actor string, at time.Time) (*domain.ComplianceViolation, bool, error) {
	query := `
		UPDATE compliance_violations
		SET acknowledged_at = $3, acknowledged_by = $4
		WHERE tenant_id = $1 AND id = $2 AND acknowledged_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, tenantID, id, at, actor)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acknowledge violation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	violation, err := r.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, false, err
	}
	return violation, rows > 0, nil
}

// CountBySeverity aggregates detections with detected_at in [from, to).
func (r *PostgresViolationRepository) CountBySeverity(ctx context.Context, tenantID string, from, to time.Time) (domain.SeverityCounts, error) {
	query := `
		SELECT severity, COUNT(*)
		FROM compliance_violations
		WHERE tenant_id = $1 AND detected_at >= $2 AND detected_at < $3
		GROUP BY severity
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, from, to)
	if err != nil {
		return domain.SeverityCounts{}, fmt.Errorf("failed to count violations by severity: %w", err)
	}
	defer rows.Close()

	var counts domain.SeverityCounts
	for rows.Next() {
		var severity string
		var n int
		if err := rows.Scan(&severity, &n); err != nil {
			return domain.SeverityCounts{}, fmt.Errorf("failed to scan severity count: %w", err)
		}
		switch domain.Severity(severity) {
		case domain.SeverityWarning:
			counts.Warnings += n
		case domain.SeverityError:
			counts.Errors += n
		}
		counts.Violations += n
	}
	if err := rows.Err(); err != nil {
		return domain.SeverityCounts{}, fmt.Errorf("error iterating severity counts: %w", err)
	}
	return counts, nil
}

// CountByType aggregates detections with detected_at in [from, to).
func (r *PostgresViolationRepository) CountByType(ctx context.Context, tenantID string, from, to time.Time) (map[domain.ViolationType]int, error) {
	query := `
		SELECT violation_type, COUNT(*)
		FROM compliance_violations
		WHERE tenant_id = $1 AND detected_at >= $2 AND detected_at < $3
		GROUP BY violation_type
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count violations by type: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ViolationType]int)
	for rows.Next() {
		var vt string
		var n int
		if err := rows.Scan(&vt, &n); err != nil {
			return nil, fmt.Errorf("failed to scan type count: %w", err)
		}
		counts[domain.ViolationType(vt)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating type counts: %w", err)
	}
	return counts, nil
}

func buildViolationWhere(tenantID string, filter domain.ViolationFilter) (string, []interface{}) {
	conditions := []string{"tenant_id = $1"}
	args := []interface{}{tenantID}
	argIndex := 2

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}
	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("violation_type = $%d", argIndex))
		args = append(args, string(*filter.Type))
		argIndex++
	}
	if filter.Severity != nil {
		conditions = append(conditions, fmt.Sprintf("severity = $%d", argIndex))
		args = append(args, string(*filter.Severity))
		argIndex++
	}
	if filter.Acknowledged != nil {
		if *filter.Acknowledged {
			conditions = append(conditions, "acknowledged_at IS NOT NULL")
		} else {
			conditions = append(conditions, "acknowledged_at IS NULL")
		}
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("detected_at >= $%d", argIndex))
		args = append(args, *filter.From)
		argIndex++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("detected_at < $%d", argIndex))
		args = append(args, *filter.To)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanViolation(scan func(dest ...interface{}) error) (*domain.ComplianceViolation, error) {
	var v domain.ComplianceViolation
	var affectedJSON []byte
	var ackAt sql.NullTime
	var ackBy sql.NullString

	err := scan(
		&v.ID,
		&v.TenantID,
		&v.UserID,
		&v.Type,
		&v.Severity,
		&v.DetectedAt,
		&v.PeriodStart,
		&v.PeriodEnd,
		&v.RuleSet,
		&v.Details.Expected,
		&v.Details.Actual,
		&affectedJSON,
		&ackAt,
		&ackBy,
	)
	if err != nil {
		return nil, err
	}

	if len(affectedJSON) > 0 {
		if err := json.Unmarshal(affectedJSON, &v.Details.AffectedEntries); err != nil {
			return nil, fmt.Errorf("failed to unmarshal affected entries: %w", err)
		}
	}
	if ackAt.Valid {
		v.AcknowledgedAt = &ackAt.Time
	}
	if ackBy.Valid {
		v.AcknowledgedBy = &ackBy.String
	}
	return &v, nil
}
