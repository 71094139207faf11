package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shiftwise/shiftwise/internal/domain"
	"github.com/shiftwise/shiftwise/internal/service/token"
)

type reportFixture struct {
	violations *MockViolationRepository
	reports    *MockReportRepository
	audit      *MockAuditLogRepository
	tokens     *token.Service
	uc         *ReportUseCase
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	tokens, err := token.NewService("test-secret")
	assert.NoError(t, err)

	f := &reportFixture{
		violations: new(MockViolationRepository),
		reports:    new(MockReportRepository),
		audit:      new(MockAuditLogRepository),
		tokens:     tokens,
	}
	f.uc = NewReportUseCase(
		f.violations, f.reports, f.audit, tokens, noopLogger{},
		"https://compliance.example.com", time.Hour, 366,
	)
	f.uc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return f
}

func reportRequest(format domain.ReportFormat) GenerateReportRequest {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return GenerateReportRequest{
		PeriodStart: start,
		PeriodEnd:   start.AddDate(0, 0, 7),
		Format:      format,
	}
}

func TestReportUseCase_GenerateCSV(t *testing.T) {
	f := newReportFixture(t)
	req := reportRequest(domain.ReportFormatCSV)

	stored := []*domain.ComplianceViolation{{
		ID:          "v-1",
		TenantID:    "tenant-1",
		UserID:      "user-1",
		Type:        domain.ViolationShiftDuration,
		Severity:    domain.SeverityWarning,
		DetectedAt:  req.PeriodStart.Add(26 * time.Hour),
		PeriodStart: req.PeriodStart.Add(8 * time.Hour),
		PeriodEnd:   req.PeriodStart.Add(17 * time.Hour),
		RuleSet:     "eu",
		Details: domain.ViolationDetails{
			Expected:        "at most 480 minutes of working time per shift",
			Actual:          "540 minutes worked",
			AffectedEntries: []string{"e1"},
		},
	}}

	f.violations.On("List", mock.Anything, "tenant-1", mock.MatchedBy(func(filter domain.ViolationFilter) bool {
		return filter.From != nil && filter.From.Equal(req.PeriodStart) &&
			filter.To != nil && filter.To.Equal(req.PeriodEnd)
	})).Return(stored, 1, nil)
	f.reports.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.audit.On("Append", mock.Anything, mock.MatchedBy(func(entry *domain.ComplianceAuditLog) bool {
		d := entry.Details.ReportGenerated
		return entry.Action == domain.AuditReportGenerated &&
			d != nil && d.ExportFormat == domain.ReportFormatCSV
	})).Return(nil)

	report, err := f.uc.Generate(context.Background(), "tenant-1", req, "manager-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Len(t, report.Hash, 64)
	assert.Equal(t, 1, report.Summary.Total)
	assert.Contains(t, string(report.Payload), "v-1,user-1")
	assert.True(t, strings.HasPrefix(report.DownloadURL,
		"https://compliance.example.com/api/v1/compliance/reports/"+report.ID+"/download?token="))

	// The embedded token grants exactly this report.
	tokenPart := report.DownloadURL[strings.Index(report.DownloadURL, "token=")+len("token="):]
	claims, err := f.tokens.ValidateDownloadToken(tokenPart)
	assert.NoError(t, err)
	assert.Equal(t, report.ID, claims.ReportID)
	assert.Equal(t, "tenant-1", claims.TenantID)

	f.reports.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestReportUseCase_HashIndependentOfFormat(t *testing.T) {
	stored := []*domain.ComplianceViolation{{
		ID:       "v-1",
		TenantID: "tenant-1",
		UserID:   "user-1",
		Type:     domain.ViolationBreakMissing,
		Severity: domain.SeverityError,
		RuleSet:  "eu",
	}}

	var hashes []string
	for _, format := range []domain.ReportFormat{domain.ReportFormatCSV, domain.ReportFormatPDF} {
		f := newReportFixture(t)
		f.violations.On("List", mock.Anything, "tenant-1", mock.Anything).Return(stored, 1, nil)
		f.reports.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.audit.On("Append", mock.Anything, mock.Anything).Return(nil)

		report, err := f.uc.Generate(context.Background(), "tenant-1", reportRequest(format), "manager-1")
		assert.NoError(t, err)
		hashes = append(hashes, report.Hash)
	}
	assert.Equal(t, hashes[0], hashes[1])
}

func TestReportUseCase_GenerateRejectsBadRequests(t *testing.T) {
	f := newReportFixture(t)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     GenerateReportRequest
		isRange bool
	}{
		{
			name:    "inverted period",
			req:     GenerateReportRequest{PeriodStart: start, PeriodEnd: start.AddDate(0, 0, -1), Format: domain.ReportFormatCSV},
			isRange: true,
		},
		{
			name:    "period too long",
			req:     GenerateReportRequest{PeriodStart: start, PeriodEnd: start.AddDate(0, 0, 400), Format: domain.ReportFormatCSV},
			isRange: true,
		},
		{
			name: "unsupported format",
			req:  GenerateReportRequest{PeriodStart: start, PeriodEnd: start.AddDate(0, 0, 7), Format: "xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Generate(context.Background(), "tenant-1", tt.req, "manager-1")
			if tt.isRange {
				assert.True(t, domain.IsInvalidRange(err))
			} else {
				assert.True(t, domain.IsValidation(err))
			}
		})
	}
	// Nothing persisted, nothing audited.
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestReportUseCase_Download(t *testing.T) {
	f := newReportFixture(t)

	stored := &domain.ComplianceReport{
		ID:       "report-1",
		TenantID: "tenant-1",
		Format:   domain.ReportFormatCSV,
		Payload:  []byte("violation_id,user_id\n"),
	}
	f.reports.On("FindByID", mock.Anything, "tenant-1", "report-1").Return(stored, nil)

	signed, err := f.tokens.GenerateDownloadToken("tenant-1", "report-1", time.Hour)
	assert.NoError(t, err)

	report, err := f.uc.Download(context.Background(), "report-1", signed)
	assert.NoError(t, err)
	assert.Equal(t, stored.Payload, report.Payload)
}

func TestReportUseCase_DownloadTokenForOtherReport(t *testing.T) {
	f := newReportFixture(t)

	signed, err := f.tokens.GenerateDownloadToken("tenant-1", "report-2", time.Hour)
	assert.NoError(t, err)

	_, err = f.uc.Download(context.Background(), "report-1", signed)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
	f.reports.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestReportUseCase_DownloadGarbageToken(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.uc.Download(context.Background(), "report-1", "not-a-token")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}
