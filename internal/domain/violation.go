package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ViolationType identifies which rule was breached.
type ViolationType string

const (
	ViolationRestPeriod        ViolationType = "REST_PERIOD_VIOLATION"
	ViolationShiftDuration     ViolationType = "SHIFT_DURATION_VIOLATION"
	ViolationBreakMissing      ViolationType = "BREAK_MISSING"
	ViolationWeeklyRest        ViolationType = "WEEKLY_REST_VIOLATION"
	ViolationWeeklyWorkingTime ViolationType = "WEEKLY_WORKING_TIME_VIOLATION"
)

// Severity grades a violation.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ViolationDetails carries the human-readable evidence for a violation.
type ViolationDetails struct {
	Expected        string   `json:"expected"`
	Actual          string   `json:"actual"`
	AffectedEntries []string `json:"affected_entries"`
}

// ComplianceViolation is one detected breach of one rule. Everything except
// the acknowledgment fields is immutable once written.
type ComplianceViolation struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"`
	UserID      string           `json:"user_id"`
	Type        ViolationType    `json:"violation_type"`
	Severity    Severity         `json:"severity"`
	DetectedAt  time.Time        `json:"detected_at"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	RuleSet     string           `json:"rule_set"`
	Details     ViolationDetails `json:"details"`

	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
}

// Acknowledged reports whether the violation has been acknowledged.
func (v *ComplianceViolation) Acknowledged() bool {
	return v.AcknowledgedAt != nil
}

// violationNamespace seeds deterministic violation identities.
var violationNamespace = uuid.MustParse("8f3c1d6a-2b54-4c09-9a1e-5d7f20c3e481")

// NewViolationID derives the deterministic identity of a violation from the
// tuple that makes it unique. Re-running detection over the same window yields
// the same id, which is what lets the ledger absorb re-runs.
func NewViolationID(tenantID, userID string, vt ViolationType, periodStart time.Time) string {
	key := fmt.Sprintf("%s|%s|%s|%s", tenantID, userID, vt, periodStart.UTC().Format(time.RFC3339))
	return uuid.NewSHA1(violationNamespace, []byte(key)).String()
}

// ViolationFilter narrows ledger listings.
type ViolationFilter struct {
	UserID       *string        `json:"user_id,omitempty"`
	Type         *ViolationType `json:"violation_type,omitempty"`
	Severity     *Severity      `json:"severity,omitempty"`
	Acknowledged *bool          `json:"acknowledged,omitempty"`
	From         *time.Time     `json:"from,omitempty"`
	To           *time.Time     `json:"to,omitempty"`
	Limit        int            `json:"limit"`
	Offset       int            `json:"offset"`
}

// SeverityCounts is one stats bucket.
type SeverityCounts struct {
	Violations int `json:"violations"`
	Warnings   int `json:"warnings"`
	Errors     int `json:"errors"`
}

// ComplianceStats is the rolling dashboard summary for a tenant.
type ComplianceStats struct {
	Today            SeverityCounts        `json:"today"`
	ThisWeek         SeverityCounts        `json:"this_week"`
	ThisMonth        SeverityCounts        `json:"this_month"`
	ViolationsByType map[ViolationType]int `json:"violations_by_type"`
	// HorizonDays is the configured window ViolationsByType was computed over.
	HorizonDays int `json:"horizon_days"`
}
