package domain

import "time"

// ReportFormat is the export encoding of a compliance report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ValidReportFormat reports whether f is a supported export encoding.
func ValidReportFormat(f ReportFormat) bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportFilters optionally narrows the violation set a report covers.
type ReportFilters struct {
	UserID   *string        `json:"user_id,omitempty"`
	Type     *ViolationType `json:"violation_type,omitempty"`
	Severity *Severity      `json:"severity,omitempty"`
}

// ReportSummary is computed at generation time from the retrieved set.
type ReportSummary struct {
	Total      int                   `json:"total"`
	ByType     map[ViolationType]int `json:"by_type"`
	BySeverity map[Severity]int      `json:"by_severity"`
}

// ComplianceReport is an immutable, hash-stamped export of a period's
// violations. A correction is always a new report, never an edit.
type ComplianceReport struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenant_id"`
	PeriodStart time.Time     `json:"period_start"`
	PeriodEnd   time.Time     `json:"period_end"`
	Format      ReportFormat  `json:"format"`
	Filters     ReportFilters `json:"filters"`
	Summary     ReportSummary `json:"summary"`
	DownloadURL string        `json:"download_url"`
	// Hash is a sha256 digest over the canonical JSON of the violation set
	// plus summary. Identical violation sets hash identically regardless of
	// export encoding.
	Hash        string    `json:"hash"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by"`

	// Payload is the encoded artifact. Served via the download endpoint,
	// never inlined in API responses.
	Payload []byte `json:"-"`
}
