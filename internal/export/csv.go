package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
)

// CSVEncoder renders a report as a flat CSV table, one violation per row,
// with a trailing summary block.
type CSVEncoder struct{}

func (e *CSVEncoder) ContentType() string { return "text/csv" }

func (e *CSVEncoder) Encode(report *domain.ComplianceReport, violations []*domain.ComplianceViolation) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{
		"violation_id", "user_id", "violation_type", "severity",
		"period_start", "period_end", "rule_set",
		"expected", "actual", "affected_entries",
		"detected_at", "acknowledged_at", "acknowledged_by",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, v := range violations {
		ackAt, ackBy := "", ""
		if v.AcknowledgedAt != nil {
			ackAt = v.AcknowledgedAt.UTC().Format(time.RFC3339)
		}
		if v.AcknowledgedBy != nil {
			ackBy = *v.AcknowledgedBy
		}
		row := []string{
			v.ID,
			v.UserID,
			string(v.Type),
			string(v.Severity),
			v.PeriodStart.UTC().Format(time.RFC3339),
			v.PeriodEnd.UTC().Format(time.RFC3339),
			v.RuleSet,
			v.Details.Expected,
			v.Details.Actual,
			strings.Join(v.Details.AffectedEntries, ";"),
			v.DetectedAt.UTC().Format(time.RFC3339),
			ackAt,
			ackBy,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	// Summary block, stable ordering for readability.
	if err := w.Write([]string{}); err != nil {
		return nil, fmt.Errorf("failed to write csv separator: %w", err)
	}
	summaryRows := [][]string{
		{"summary", "period_start", report.PeriodStart.UTC().Format(time.RFC3339)},
		{"summary", "period_end", report.PeriodEnd.UTC().Format(time.RFC3339)},
		{"summary", "total", fmt.Sprintf("%d", report.Summary.Total)},
		{"summary", "warnings", fmt.Sprintf("%d", report.Summary.BySeverity[domain.SeverityWarning])},
		{"summary", "errors", fmt.Sprintf("%d", report.Summary.BySeverity[domain.SeverityError])},
	}
	for _, vt := range []domain.ViolationType{
		domain.ViolationRestPeriod,
		domain.ViolationShiftDuration,
		domain.ViolationBreakMissing,
		domain.ViolationWeeklyRest,
		domain.ViolationWeeklyWorkingTime,
	} {
		if n := report.Summary.ByType[vt]; n > 0 {
			summaryRows = append(summaryRows, []string{"summary", string(vt), fmt.Sprintf("%d", n)})
		}
	}
	for _, row := range summaryRows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv summary: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
