// Package export serializes compliance reports into their export encodings
// and computes the content-integrity hash regulators verify them against.
package export

import (
	"time"

	"github.com/shiftwise/shiftwise/internal/canon"
	"github.com/shiftwise/shiftwise/internal/domain"
)

// Encoder renders a report payload in one export encoding.
type Encoder interface {
	Encode(report *domain.ComplianceReport, violations []*domain.ComplianceViolation) ([]byte, error)
	ContentType() string
}

// EncoderFor returns the encoder for a format. Unsupported formats fail with
// a ValidationError.
func EncoderFor(format domain.ReportFormat) (Encoder, error) {
	switch format {
	case domain.ReportFormatCSV:
		return &CSVEncoder{}, nil
	case domain.ReportFormatPDF:
		return &PDFEncoder{}, nil
	default:
		return nil, &domain.ValidationError{Reason: "unsupported report format: " + string(format)}
	}
}

// hashedViolation is the canonical projection of a violation for hashing.
// Acknowledgment state is deliberately excluded: acknowledging a violation
// after the fact must not change what an already-issued report attests to.
type hashedViolation struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"user_id"`
	Type        domain.ViolationType    `json:"violation_type"`
	Severity    domain.Severity         `json:"severity"`
	PeriodStart string                  `json:"period_start"`
	PeriodEnd   string                  `json:"period_end"`
	RuleSet     string                  `json:"rule_set"`
	Details     domain.ViolationDetails `json:"details"`
}

// ContentHash digests the violation set plus summary with canonical JSON.
// Identical sets produce identical hashes regardless of export encoding;
// changing any violation's details changes the hash.
func ContentHash(violations []*domain.ComplianceViolation, summary domain.ReportSummary) (string, error) {
	hashed := make([]hashedViolation, 0, len(violations))
	for _, v := range violations {
		hashed = append(hashed, hashedViolation{
			ID:          v.ID,
			UserID:      v.UserID,
			Type:        v.Type,
			Severity:    v.Severity,
			PeriodStart: v.PeriodStart.UTC().Format(time.RFC3339),
			PeriodEnd:   v.PeriodEnd.UTC().Format(time.RFC3339),
			RuleSet:     v.RuleSet,
			Details:     v.Details,
		})
	}
	return canon.HashValue(map[string]interface{}{
		"violations": hashed,
		"summary":    summary,
	})
}

// Summarize computes the generation-time summary from the retrieved set.
func Summarize(violations []*domain.ComplianceViolation) domain.ReportSummary {
	summary := domain.ReportSummary{
		Total:      len(violations),
		ByType:     make(map[domain.ViolationType]int),
		BySeverity: make(map[domain.Severity]int),
	}
	for _, v := range violations {
		summary.ByType[v.Type]++
		summary.BySeverity[v.Severity]++
	}
	return summary
}
