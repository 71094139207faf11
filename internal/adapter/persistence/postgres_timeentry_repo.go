package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// PostgresTimeEntryProvider reads the time-tracking collaborator's entries.
// This adapter is strictly read-only: the compliance core never writes to the
// time_entries table.
type PostgresTimeEntryProvider struct {
	db *sql.DB
}

// NewPostgresTimeEntryProvider creates a read-only time entry provider.
func NewPostgresTimeEntryProvider(db *sql.DB) ports.TimeEntryProvider {
	return &PostgresTimeEntryProvider{db: db}
}

// ListEntries returns completed entries clocking in within [from, to),
// ordered by clock-in. Entries without a clock-out are still in progress and
// not evaluable.
func (p *PostgresTimeEntryProvider) ListEntries(ctx context.Context, tenantID string, userID *string, from, to time.Time) ([]domain.TimeEntry, error) {
	query := `
		SELECT id, user_id, actual_clock_in, actual_clock_out, COALESCE(break_minutes, 0)
		FROM time_entries
		WHERE tenant_id = $1 AND actual_clock_in >= $2 AND actual_clock_in < $3
			AND actual_clock_out IS NOT NULL
	`
	args := []interface{}{tenantID, from, to}
	if userID != nil {
		query += " AND user_id = $4"
		args = append(args, *userID)
	}
	query += " ORDER BY actual_clock_in ASC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TimeEntry
	for rows.Next() {
		var entry domain.TimeEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.ActualClockIn,
			&entry.ActualClockOut,
			&entry.BreakMinutes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating time entries: %w", err)
	}
	return entries, nil
}
