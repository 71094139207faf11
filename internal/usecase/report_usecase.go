package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/export"
	"github.com/shiftwise/shiftwise/internal/ports"
	"github.com/shiftwise/shiftwise/internal/service/logger"
	"github.com/shiftwise/shiftwise/internal/service/token"
)

// GenerateReportRequest describes a report to generate.
type GenerateReportRequest struct {
	PeriodStart time.Time            `json:"period_start"`
	PeriodEnd   time.Time            `json:"period_end"`
	Format      domain.ReportFormat  `json:"format"`
	Filters     domain.ReportFilters `json:"filters"`
}

// ReportUseCase assembles immutable, hash-stamped compliance reports. Report
// generation reads a snapshot of the ledger and never blocks detection or
// acknowledgment.
type ReportUseCase struct {
	violations   ports.ViolationRepository
	reports      ports.ReportRepository
	audit        ports.AuditLogRepository
	tokens       *token.Service
	logger       logger.Logger
	baseURL      string
	downloadTTL  time.Duration
	maxRangeDays int
	now          func() time.Time
}

// NewReportUseCase creates a report use case.
func NewReportUseCase(
	violations ports.ViolationRepository,
	reports ports.ReportRepository,
	audit ports.AuditLogRepository,
	tokens *token.Service,
	log logger.Logger,
	baseURL string,
	downloadTTL time.Duration,
	maxRangeDays int,
) *ReportUseCase {
	return &ReportUseCase{
		violations:   violations,
		reports:      reports,
		audit:        audit,
		tokens:       tokens,
		logger:       log,
		baseURL:      baseURL,
		downloadTTL:  downloadTTL,
		maxRangeDays: maxRangeDays,
		now:          time.Now,
	}
}

// Generate builds, hashes and persists a report for the period, appends a
// report_generated audit entry and returns the report with its time-bounded
// download URL. Reports are never mutated afterwards; a correction is a new
// report.
func (uc *ReportUseCase) Generate(ctx context.Context, tenantID string, req GenerateReportRequest, actor string) (*domain.ComplianceReport, error) {
	if !req.PeriodStart.Before(req.PeriodEnd) {
		return nil, &domain.InvalidRangeError{Reason: "period start must precede period end"}
	}
	if req.PeriodEnd.Sub(req.PeriodStart) > time.Duration(uc.maxRangeDays)*24*time.Hour {
		return nil, &domain.InvalidRangeError{Reason: fmt.Sprintf("period exceeds the maximum of %d days", uc.maxRangeDays)}
	}
	if !domain.ValidReportFormat(req.Format) {
		return nil, &domain.ValidationError{Reason: "format must be csv or pdf"}
	}

	encoder, err := export.EncoderFor(req.Format)
	if err != nil {
		return nil, err
	}

	// Snapshot read of the period's violations.
	filter := domain.ViolationFilter{
		UserID:   req.Filters.UserID,
		Type:     req.Filters.Type,
		Severity: req.Filters.Severity,
		From:     &req.PeriodStart,
		To:       &req.PeriodEnd,
	}
	violations, _, err := uc.violations.List(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query violations for report: %w", err)
	}

	summary := export.Summarize(violations)
	hash, err := export.ContentHash(violations, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to hash report content: %w", err)
	}

	report := &domain.ComplianceReport{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Format:      req.Format,
		Filters:     req.Filters,
		Summary:     summary,
		Hash:        hash,
		GeneratedAt: uc.now().UTC(),
		GeneratedBy: actor,
	}

	payload, err := encoder.Encode(report, violations)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	report.Payload = payload

	downloadToken, err := uc.tokens.GenerateDownloadToken(tenantID, report.ID, uc.downloadTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign download token: %w", err)
	}
	report.DownloadURL = fmt.Sprintf("%s/api/v1/compliance/reports/%s/download?token=%s",
		uc.baseURL, report.ID, downloadToken)

	if err := uc.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	entry := &domain.ComplianceAuditLog{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Action:    domain.AuditReportGenerated,
		ActorUID:  actor,
		Timestamp: report.GeneratedAt,
		Details: domain.AuditDetails{
			ReportGenerated: &domain.ReportGeneratedDetails{
				ReportID:     report.ID,
				ExportFormat: report.Format,
				PeriodStart:  report.PeriodStart,
				PeriodEnd:    report.PeriodEnd,
			},
		},
	}
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append report_generated audit entry: %w", err)
	}

	uc.logger.Info(ctx, "Compliance report generated", map[string]interface{}{
		"tenant_id": tenantID,
		"report_id": report.ID,
		"format":    report.Format,
		"total":     summary.Total,
	})
	return report, nil
}

// Get returns report metadata by id. The payload is only served through
// Download.
func (uc *ReportUseCase) Get(ctx context.Context, tenantID, id string) (*domain.ComplianceReport, error) {
	report, err := uc.reports.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// Download validates the time-bounded token and returns the encoded artifact.
func (uc *ReportUseCase) Download(ctx context.Context, reportID, downloadToken string) (*domain.ComplianceReport, error) {
	claims, err := uc.tokens.ValidateDownloadToken(downloadToken)
	if err != nil {
		return nil, err
	}
	if claims.ReportID != reportID {
		return nil, token.ErrInvalidToken
	}
	report, err := uc.reports.FindByID(ctx, claims.TenantID, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to load report payload: %w", err)
	}
	return report, nil
}
