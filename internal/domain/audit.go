package domain

import (
	"fmt"
	"time"

	"github.com/shiftwise/shiftwise/internal/canon"
)

// AuditAction enumerates the compliance-relevant actions recorded in the
// trail.
type AuditAction string

const (
	AuditReportGenerated       AuditAction = "report_generated"
	AuditViolationAcknowledged AuditAction = "violation_acknowledged"
	AuditRuleSetChanged        AuditAction = "rule_set_changed"
	AuditManualCheck           AuditAction = "manual_check"
)

// AuditDetails is a tagged union keyed by the entry's action: exactly the
// variant matching the action is set.
type AuditDetails struct {
	ReportGenerated       *ReportGeneratedDetails       `json:"report_generated,omitempty"`
	ViolationAcknowledged *ViolationAcknowledgedDetails `json:"violation_acknowledged,omitempty"`
	RuleSetChanged        *RuleSetChangedDetails        `json:"rule_set_changed,omitempty"`
	ManualCheck           *ManualCheckDetails           `json:"manual_check,omitempty"`
}

// ReportGeneratedDetails records which artifact a report_generated entry
// refers to.
type ReportGeneratedDetails struct {
	ReportID     string       `json:"report_id"`
	ExportFormat ReportFormat `json:"export_format"`
	PeriodStart  time.Time    `json:"period_start"`
	PeriodEnd    time.Time    `json:"period_end"`
}

// ViolationAcknowledgedDetails records which violation was acknowledged.
type ViolationAcknowledgedDetails struct {
	ViolationID   string        `json:"violation_id"`
	ViolationType ViolationType `json:"violation_type"`
}

// RuleSetChangedDetails preserves the superseded config for traceability.
// Before is nil when the entry records the initial seeding of a tenant.
type RuleSetChangedDetails struct {
	Before *RuleSetConfig `json:"before,omitempty"`
	After  RuleSetConfig  `json:"after"`
}

// ManualCheckDetails records an explicit compliance check request.
type ManualCheckDetails struct {
	UserID          string    `json:"user_id,omitempty"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	ViolationsFound int       `json:"violations_found"`
}

// ComplianceAuditLog is one append-only trail entry. Entries are hash-chained
// per tenant: EntryHash covers the entry content and PrevHash, so any
// after-the-fact edit breaks the chain.
type ComplianceAuditLog struct {
	Seq       int64        `json:"seq"`
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	Action    AuditAction  `json:"action"`
	ActorUID  string       `json:"actor_uid"`
	Timestamp time.Time    `json:"timestamp"`
	Details   AuditDetails `json:"details"`
	PrevHash  string       `json:"prev_hash"`
	EntryHash string       `json:"entry_hash"`
}

// AuditEntryHash computes the chain link for an audit entry: a sha256 digest
// over the entry's canonical content and the previous entry's hash. The
// sequence number is excluded because it is assigned by storage after the
// hash is fixed.
func AuditEntryHash(entry *ComplianceAuditLog) (string, error) {
	content, err := canon.StableJSON(map[string]interface{}{
		"id":        entry.ID,
		"tenant_id": entry.TenantID,
		"action":    string(entry.Action),
		"actor_uid": entry.ActorUID,
		"timestamp": entry.Timestamp.UTC().Format(time.RFC3339Nano),
		"details":   entry.Details,
	})
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize audit entry: %w", err)
	}
	return canon.HashHex([]byte(entry.PrevHash), content), nil
}

// AuditFilter narrows trail listings.
type AuditFilter struct {
	Action *AuditAction `json:"action,omitempty"`
	From   *time.Time   `json:"from,omitempty"`
	To     *time.Time   `json:"to,omitempty"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}
