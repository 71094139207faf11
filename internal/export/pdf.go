package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/shiftwise/shiftwise/internal/domain"
)

// PDFEncoder renders a report as a paginated PDF: title, period, summary
// table, then one block per violation.
type PDFEncoder struct{}

func (e *PDFEncoder) ContentType() string { return "application/pdf" }

func (e *PDFEncoder) Encode(report *domain.ComplianceReport, violations []*domain.ComplianceViolation) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Work-Time Compliance Report")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s - %s",
		report.PeriodStart.UTC().Format("2006-01-02"),
		report.PeriodEnd.UTC().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s by %s",
		report.GeneratedAt.UTC().Format(time.RFC3339), report.GeneratedBy))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Content hash (sha256): %s", report.Hash))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Total violations: %d (warnings: %d, errors: %d)",
		report.Summary.Total,
		report.Summary.BySeverity[domain.SeverityWarning],
		report.Summary.BySeverity[domain.SeverityError]))
	pdf.Ln(6)
	for _, vt := range []domain.ViolationType{
		domain.ViolationRestPeriod,
		domain.ViolationShiftDuration,
		domain.ViolationBreakMissing,
		domain.ViolationWeeklyRest,
		domain.ViolationWeeklyWorkingTime,
	} {
		if n := report.Summary.ByType[vt]; n > 0 {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %d", vt, n))
			pdf.Ln(6)
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Violations")
	pdf.Ln(8)
	if len(violations) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, "No violations in this period.")
		pdf.Ln(6)
	}
	for _, v := range violations {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s  [%s]  user %s", v.Type, v.Severity, v.UserID))
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("Period: %s - %s",
			v.PeriodStart.UTC().Format(time.RFC3339),
			v.PeriodEnd.UTC().Format(time.RFC3339)), "", "L", false)
		pdf.MultiCell(0, 5, "Expected: "+v.Details.Expected, "", "L", false)
		pdf.MultiCell(0, 5, "Actual: "+v.Details.Actual, "", "L", false)
		if v.AcknowledgedAt != nil && v.AcknowledgedBy != nil {
			pdf.MultiCell(0, 5, fmt.Sprintf("Acknowledged by %s at %s",
				*v.AcknowledgedBy, v.AcknowledgedAt.UTC().Format(time.RFC3339)), "", "L", false)
		}
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
