package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/ports"
)

// PostgresReportRepository stores immutable report artifacts. There is no
// update path: a correction is always a new report.
type PostgresReportRepository struct {
	db *sql.DB
}

// NewPostgresReportRepository creates a PostgreSQL report repository.
func NewPostgresReportRepository(db *sql.DB) ports.ReportRepository {
	return &PostgresReportRepository{db: db}
}

// Create persists a new report with its encoded payload.
func (r *PostgresReportRepository) Create(ctx context.Context, report *domain.ComplianceReport) error {
	query := `
		INSERT INTO compliance_reports (
			id, tenant_id, period_start, period_end, format, filters, summary,
			download_url, hash, payload, generated_at, generated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	filtersJSON, err := json.Marshal(report.Filters)
	if err != nil {
		return fmt.Errorf("failed to marshal report filters: %w", err)
	}
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal report summary: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		report.ID,
		report.TenantID,
		report.PeriodStart,
		report.PeriodEnd,
		string(report.Format),
		filtersJSON,
		summaryJSON,
		report.DownloadURL,
		report.Hash,
		report.Payload,
		report.GeneratedAt,
		report.GeneratedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// FindByID retrieves a report including its payload.
func (r *PostgresReportRepository) FindByID(ctx context.Context, tenantID, id string) (*domain.ComplianceReport, error) {
	query := `
		SELECT id, tenant_id, period_start, period_end, format, filters, summary,
			download_url, hash, payload, generated_at, generated_by
		FROM compliance_reports
		WHERE tenant_id = $1 AND id = $2
	`

	var report domain.ComplianceReport
	var filtersJSON, summaryJSON []byte

	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(
		&report.ID,
		&report.TenantID,
		&report.PeriodStart,
		&report.PeriodEnd,
		&report.Format,
		&filtersJSON,
		&summaryJSON,
		&report.DownloadURL,
		&report.Hash,
		&report.Payload,
		&report.GeneratedAt,
		&report.GeneratedBy,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Resource: "report", ID: id}
		}
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	if err := json.Unmarshal(filtersJSON, &report.Filters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report filters: %w", err)
	}
	if err := json.Unmarshal(summaryJSON, &report.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report summary: %w", err)
	}
	return &report, nil
}
