package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// PostgresRuleSetRepository stores the single active rule set per tenant.
type PostgresRuleSetRepository struct {
	db *sql.DB
}

// NewPostgresRuleSetRepository creates a PostgreSQL rule set repository.
func NewPostgresRuleSetRepository(db *sql.DB) ports.RuleSetRepository {
	return &PostgresRuleSetRepository{db: db}
}

// GetActive retrieves the tenant's active config.
func (r *PostgresRuleSetRepository) GetActive(ctx context.Context, tenantID string) (*domain.RuleSetConfig, error) {
	query := `
		SELECT tenant_id, rule_set, daily_rest_minutes, weekly_rest_minutes,
			max_daily_minutes, max_daily_comp_minutes, max_weekly_minutes,
			break_after_minutes, break_duration_minutes,
			break_after_minutes_2, break_duration_minutes_2,
			updated_at, updated_by
		FROM compliance_rule_sets
		WHERE tenant_id = $1
	`

	var cfg domain.RuleSetConfig
	var breakAfter2, breakDuration2 sql.NullInt64

	err := r.db.QueryRowContext(ctx, query, tenantID).Scan(
		&cfg.TenantID,
		&cfg.RuleSet,
		&cfg.DailyRestPeriodMinutes,
		&cfg.WeeklyRestPeriodMinutes,
		&cfg.MaxDailyWorkingTimeMinutes,
		&cfg.MaxDailyWorkingTimeWithCompensationMinutes,
		&cfg.MaxWeeklyWorkingTimeMinutes,
		&cfg.BreakRequiredAfterMinutes,
		&cfg.BreakDurationMinutes,
		&breakAfter2,
		&breakDuration2,
		&cfg.UpdatedAt,
		&cfg.UpdatedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "rule set", ID: tenantID}
		}
		return nil, fmt.Errorf("failed to find rule set: %w", err)
	}

	if breakAfter2.Valid {
		v := int(breakAfter2.Int64)
		cfg.BreakRequiredAfterMinutes2 = &v
	}
	if breakDuration2.Valid {
		v := int(breakDuration2.Int64)
		cfg.BreakDurationMinutes2 = &v
	}
	return &cfg, nil
}

// Save upserts the whole config; last write wins at tenant scope.
func (r *PostgresRuleSetRepository) Save(ctx context.Context, cfg *domain.RuleSetConfig) error {
	query := `
		INSERT INTO compliance_rule_sets (
			tenant_id, rule_set, daily_rest_minutes, weekly_rest_minutes,
			max_daily_minutes, max_daily_comp_minutes, max_weekly_minutes,
			break_after_minutes, break_duration_minutes,
			break_after_minutes_2, break_duration_minutes_2,
			updated_at, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (tenant_id) DO UPDATE SET
			rule_set = EXCLUDED.rule_set,
			daily_rest_minutes = EXCLUDED.daily_rest_minutes,
			weekly_rest_minutes = EXCLUDED.weekly_rest_minutes,
			max_daily_minutes = EXCLUDED.max_daily_minutes,
			max_daily_comp_minutes = EXCLUDED.max_daily_comp_minutes,
			max_weekly_minutes = EXCLUDED.max_weekly_minutes,
			break_after_minutes = EXCLUDED.break_after_minutes,
			break_duration_minutes = EXCLUDED.break_duration_minutes,
			break_after_minutes_2 = EXCLUDED.break_after_minutes_2,
			break_duration_minutes_2 = EXCLUDED.break_duration_minutes_2,
			updated_at = EXCLUDED.updated_at,
			updated_by = EXCLUDED.updated_by
	`

	var breakAfter2, breakDuration2 sql.NullInt64
	if cfg.BreakRequiredAfterMinutes2 != nil {
		breakAfter2 = sql.NullInt64{Int64: int64(*cfg.BreakRequiredAfterMinutes2), Valid: true}
	}
	if cfg.BreakDurationMinutes2 != nil {
		breakDuration2 = sql.NullInt64{Int64: int64(*cfg.BreakDurationMinutes2), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		cfg.TenantID,
		cfg.RuleSet,
		cfg.DailyRestPeriodMinutes,
		cfg.WeeklyRestPeriodMinutes,
		cfg.MaxDailyWorkingTimeMinutes,
		cfg.MaxDailyWorkingTimeWithCompensationMinutes,
		cfg.MaxWeeklyWorkingTimeMinutes,
		cfg.BreakRequiredAfterMinutes,
		cfg.BreakDurationMinutes,
		breakAfter2,
		breakDuration2,
		cfg.UpdatedAt,
		cfg.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to save rule set: %w", err)
	}
	return nil
}
