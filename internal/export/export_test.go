package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shiftwise/shiftwise/internal/domain"
)

func sampleViolations() []*domain.ComplianceViolation {
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	actor := "manager-1"
	ackAt := start.AddDate(0, 0, 3)
	return []*domain.ComplianceViolation{
		{
			ID:          "v-1",
			TenantID:    "tenant-1",
			UserID:      "user-1",
			Type:        domain.ViolationShiftDuration,
			Severity:    domain.SeverityWarning,
			DetectedAt:  start.AddDate(0, 0, 1),
			PeriodStart: start,
			PeriodEnd:   start.Add(9 * time.Hour),
			RuleSet:     "eu",
			Details: domain.ViolationDetails{
				Expected:        "at most 480 minutes of working time per shift",
				Actual:          "540 minutes worked",
				AffectedEntries: []string{"e1"},
			},
		},
		{
			ID:          "v-2",
			TenantID:    "tenant-1",
			UserID:      "user-2",
			Type:        domain.ViolationBreakMissing,
			Severity:    domain.SeverityError,
			DetectedAt:  start.AddDate(0, 0, 1),
			PeriodStart: start.AddDate(0, 0, 1),
			PeriodEnd:   start.AddDate(0, 0, 1).Add(7 * time.Hour),
			RuleSet:     "eu",
			Details: domain.ViolationDetails{
				Expected:        "at least 30 minutes of break for a 420 minute shift",
				Actual:          "0 minutes of break recorded",
				AffectedEntries: []string{"e2", "e3"},
			},
			AcknowledgedAt: &ackAt,
			AcknowledgedBy: &actor,
		},
	}
}

func TestContentHash_Deterministic(t *testing.T) {
	violations := sampleViolations()
	summary := Summarize(violations)

	first, err := ContentHash(violations, summary)
	assert.NoError(t, err)
	second, err := ContentHash(violations, summary)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestContentHash_IgnoresAcknowledgmentAndDetection(t *testing.T) {
	violations := sampleViolations()
	summary := Summarize(violations)
	before, err := ContentHash(violations, summary)
	assert.NoError(t, err)

	// Acknowledging later or re-detecting must not change what an issued
	// report attests to.
	later := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	actor := "someone-else"
	violations[0].AcknowledgedAt = &later
	violations[0].AcknowledgedBy = &actor
	violations[1].AcknowledgedAt = nil
	violations[1].AcknowledgedBy = nil
	violations[0].DetectedAt = later

	after, err := ContentHash(violations, summary)
	assert.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestContentHash_ChangesWithContent(t *testing.T) {
	violations := sampleViolations()
	summary := Summarize(violations)
	before, err := ContentHash(violations, summary)
	assert.NoError(t, err)

	violations[0].Details.Actual = "541 minutes worked"
	after, err := ContentHash(violations, summary)
	assert.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleViolations())

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ByType[domain.ViolationShiftDuration])
	assert.Equal(t, 1, summary.ByType[domain.ViolationBreakMissing])
	assert.Equal(t, 1, summary.BySeverity[domain.SeverityWarning])
	assert.Equal(t, 1, summary.BySeverity[domain.SeverityError])
}

func TestEncoderFor(t *testing.T) {
	csvEnc, err := EncoderFor(domain.ReportFormatCSV)
	assert.NoError(t, err)
	assert.Equal(t, "text/csv", csvEnc.ContentType())

	pdfEnc, err := EncoderFor(domain.ReportFormatPDF)
	assert.NoError(t, err)
	assert.Equal(t, "application/pdf", pdfEnc.ContentType())

	_, err = EncoderFor(domain.ReportFormat("xlsx"))
	assert.True(t, domain.IsValidation(err))
}

func TestCSVEncode(t *testing.T) {
	violations := sampleViolations()
	report := &domain.ComplianceReport{
		ID:          "r-1",
		TenantID:    "tenant-1",
		PeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Format:      domain.ReportFormatCSV,
		Summary:     Summarize(violations),
	}

	payload, err := (&CSVEncoder{}).Encode(report, violations)
	assert.NoError(t, err)

	out := string(payload)
	assert.True(t, strings.HasPrefix(out, "violation_id,user_id,violation_type"))
	assert.Contains(t, out, "v-1,user-1,SHIFT_DURATION_VIOLATION,warning")
	assert.Contains(t, out, "e2;e3")
	assert.Contains(t, out, "summary,total,2")
	assert.Contains(t, out, "summary,BREAK_MISSING,1")
}

func TestPDFEncode(t *testing.T) {
	violations := sampleViolations()
	report := &domain.ComplianceReport{
		ID:          "r-1",
		TenantID:    "tenant-1",
		PeriodStart: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		Format:      domain.ReportFormatPDF,
		Hash:        "abc123",
		Summary:     Summarize(violations),
	}

	payload, err := (&PDFEncoder{}).Encode(report, violations)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF-"))
}
