// Package detector evaluates recorded work periods against a tenant's rule
// set. Detection is a pure function of its inputs: it touches no storage and
// is deterministic, so re-runs over the same window produce violations with
// identical identities.
package detector

import (
	"fmt"
	"sort"
	"time"

	"github.com/shiftwise/shiftwise/internal/domain"
)

// Window bounds one evaluation run. Entries clocking in outside [Start, End)
// are ignored.
type Window struct {
	Start time.Time
	End   time.Time
}

// Engine runs rule evaluation. The clock is injectable so tests can pin
// DetectedAt; identity derivation never depends on it.
type Engine struct {
	now func() time.Time
}

// NewEngine creates a detection engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock creates a detection engine with a fixed clock source.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Detect evaluates the entries of one tenant against rules and returns every
// violation found in the window. An empty result is success, not an error.
// Users are evaluated independently; entries are sorted by clock-in first.
func (e *Engine) Detect(tenantID string, entries []domain.TimeEntry, rules domain.RuleSetConfig, window Window) []domain.ComplianceViolation {
	detectedAt := e.now().UTC()

	byUser := make(map[string][]domain.TimeEntry)
	var userOrder []string
	for _, entry := range entries {
		if entry.ActualClockIn.Before(window.Start) || !entry.ActualClockIn.Before(window.End) {
			continue
		}
		if _, seen := byUser[entry.UserID]; !seen {
			userOrder = append(userOrder, entry.UserID)
		}
		byUser[entry.UserID] = append(byUser[entry.UserID], entry)
	}
	sort.Strings(userOrder)

	var violations []domain.ComplianceViolation
	for _, userID := range userOrder {
		userEntries := byUser[userID]
		sort.Slice(userEntries, func(i, j int) bool {
			return userEntries[i].ActualClockIn.Before(userEntries[j].ActualClockIn)
		})

		violations = append(violations, e.checkDailyRest(tenantID, userID, userEntries, rules, detectedAt)...)
		violations = append(violations, e.checkShiftDuration(tenantID, userID, userEntries, rules, detectedAt)...)
		violations = append(violations, e.checkBreaks(tenantID, userID, userEntries, rules, detectedAt)...)
		violations = append(violations, e.checkWeekly(tenantID, userID, userEntries, rules, window, detectedAt)...)
	}

	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if !a.PeriodStart.Equal(b.PeriodStart) {
			return a.PeriodStart.Before(b.PeriodStart)
		}
		return a.Type < b.Type
	})
	return violations
}

// checkDailyRest verifies the minimum uninterrupted rest between the end of
// one work period and the start of the next.
func (e *Engine) checkDailyRest(tenantID, userID string, entries []domain.TimeEntry, rules domain.RuleSetConfig, detectedAt time.Time) []domain.ComplianceViolation {
	var out []domain.ComplianceViolation
	for i := 1; i < len(entries); i++ {
		prior, next := entries[i-1], entries[i]
		gap := next.ActualClockIn.Sub(prior.ActualClockOut)
		gapMin := int(gap / time.Minute)
		if gapMin >= rules.DailyRestPeriodMinutes {
			continue
		}

		severity := domain.SeverityWarning
		actual := fmt.Sprintf("%d minutes of rest between shifts", gapMin)
		if gapMin <= 0 {
			// Overlapping or back-to-back shifts: no rest at all.
			severity = domain.SeverityError
			actual = fmt.Sprintf("overlapping or adjacent shifts (gap of %d minutes)", gapMin)
		}

		out = append(out, domain.ComplianceViolation{
			ID:          domain.NewViolationID(tenantID, userID, domain.ViolationRestPeriod, prior.ActualClockOut),
			TenantID:    tenantID,
			UserID:      userID,
			Type:        domain.ViolationRestPeriod,
			Severity:    severity,
			DetectedAt:  detectedAt,
			PeriodStart: prior.ActualClockOut,
			PeriodEnd:   next.ActualClockIn,
			RuleSet:     rules.RuleSet,
			Details: domain.ViolationDetails{
				Expected:        fmt.Sprintf("at least %d minutes of rest between shifts", rules.DailyRestPeriodMinutes),
				Actual:          actual,
				AffectedEntries: []string{prior.ID, next.ID},
			},
		})
	}
	return out
}

// checkShiftDuration verifies the daily working-time cap per entry. Durations
// within the compensable ceiling downgrade to a warning.
func (e *Engine) checkShiftDuration(tenantID, userID string, entries []domain.TimeEntry, rules domain.RuleSetConfig, detectedAt time.Time) []domain.ComplianceViolation {
	var out []domain.ComplianceViolation
	for _, entry := range entries {
		durMin := entry.DurationMinutes()
		if durMin <= rules.MaxDailyWorkingTimeMinutes {
			continue
		}

		severity := domain.SeverityError
		if durMin <= rules.MaxDailyWorkingTimeWithCompensationMinutes {
			severity = domain.SeverityWarning
		}

		out = append(out, domain.ComplianceViolation{
			ID:          domain.NewViolationID(tenantID, userID, domain.ViolationShiftDuration, entry.ActualClockIn),
			TenantID:    tenantID,
			UserID:      userID,
			Type:        domain.ViolationShiftDuration,
			Severity:    severity,
			DetectedAt:  detectedAt,
			PeriodStart: entry.ActualClockIn,
			PeriodEnd:   entry.ActualClockOut,
			RuleSet:     rules.RuleSet,
			Details: domain.ViolationDetails{
				Expected:        fmt.Sprintf("at most %d minutes of working time per shift", rules.MaxDailyWorkingTimeMinutes),
				Actual:          fmt.Sprintf("%d minutes worked", durMin),
				AffectedEntries: []string{entry.ID},
			},
		})
	}
	return out
}

// checkBreaks verifies the tiered break requirement per entry. Tiers are not
// additive: when the second threshold is crossed its duration replaces the
// first tier's.
func (e *Engine) checkBreaks(tenantID, userID string, entries []domain.TimeEntry, rules domain.RuleSetConfig, detectedAt time.Time) []domain.ComplianceViolation {
	var out []domain.ComplianceViolation
	for _, entry := range entries {
		durMin := entry.DurationMinutes()
		if rules.BreakRequiredAfterMinutes <= 0 || durMin <= rules.BreakRequiredAfterMinutes {
			continue
		}

		required := rules.BreakDurationMinutes
		if rules.BreakRequiredAfterMinutes2 != nil && rules.BreakDurationMinutes2 != nil &&
			durMin > *rules.BreakRequiredAfterMinutes2 {
			required = *rules.BreakDurationMinutes2
		}
		if entry.BreakMinutes >= required {
			continue
		}

		severity := domain.SeverityWarning
		if entry.BreakMinutes == 0 {
			severity = domain.SeverityError
		}

		out = append(out, domain.ComplianceViolation{
			ID:          domain.NewViolationID(tenantID, userID, domain.ViolationBreakMissing, entry.ActualClockIn),
			TenantID:    tenantID,
			UserID:      userID,
			Type:        domain.ViolationBreakMissing,
			Severity:    severity,
			DetectedAt:  detectedAt,
			PeriodStart: entry.ActualClockIn,
			PeriodEnd:   entry.ActualClockOut,
			RuleSet:     rules.RuleSet,
			Details: domain.ViolationDetails{
				Expected:        fmt.Sprintf("at least %d minutes of break for a %d minute shift", required, durMin),
				Actual:          fmt.Sprintf("%d minutes of break recorded", entry.BreakMinutes),
				AffectedEntries: []string{entry.ID},
			},
		})
	}
	return out
}

// checkWeekly evaluates the rolling 7-day rules. Windows are consecutive
// 7-day spans anchored at the evaluation window start, which keeps the
// per-span violation identity stable across re-runs. Spans truncated by the
// window edge are skipped: a partial span cannot fairly fail a weekly rule.
func (e *Engine) checkWeekly(tenantID, userID string, entries []domain.TimeEntry, rules domain.RuleSetConfig, window Window, detectedAt time.Time) []domain.ComplianceViolation {
	var out []domain.ComplianceViolation
	for spanStart := window.Start; spanStart.Before(window.End); spanStart = spanStart.AddDate(0, 0, 7) {
		spanEnd := spanStart.AddDate(0, 0, 7)
		if spanEnd.After(window.End) {
			break
		}

		var span []domain.TimeEntry
		for _, entry := range entries {
			if entry.ActualClockOut.After(spanStart) && entry.ActualClockIn.Before(spanEnd) {
				span = append(span, entry)
			}
		}
		if len(span) == 0 {
			continue
		}

		if v := e.checkWeeklyRest(tenantID, userID, span, rules, spanStart, spanEnd, detectedAt); v != nil {
			out = append(out, *v)
		}
		if v := e.checkWeeklyWorkingTime(tenantID, userID, span, rules, spanStart, spanEnd, detectedAt); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// checkWeeklyRest looks for one contiguous off-duty interval of the required
// length anywhere in the span, bounded by the span edges. Its absence is one
// violation for the span, not one per entry pair.
func (e *Engine) checkWeeklyRest(tenantID, userID string, span []domain.TimeEntry, rules domain.RuleSetConfig, spanStart, spanEnd, detectedAt time.Time) *domain.ComplianceViolation {
	longest := time.Duration(0)
	cursor := spanStart
	for _, entry := range span {
		if gap := entry.ActualClockIn.Sub(cursor); gap > longest {
			longest = gap
		}
		if entry.ActualClockOut.After(cursor) {
			cursor = entry.ActualClockOut
		}
	}
	if tail := spanEnd.Sub(cursor); tail > longest {
		longest = tail
	}

	longestMin := int(longest / time.Minute)
	if longestMin >= rules.WeeklyRestPeriodMinutes {
		return nil
	}

	affected := make([]string, 0, len(span))
	for _, entry := range span {
		affected = append(affected, entry.ID)
	}
	return &domain.ComplianceViolation{
		ID:          domain.NewViolationID(tenantID, userID, domain.ViolationWeeklyRest, spanStart),
		TenantID:    tenantID,
		UserID:      userID,
		Type:        domain.ViolationWeeklyRest,
		Severity:    domain.SeverityError,
		DetectedAt:  detectedAt,
		PeriodStart: spanStart,
		PeriodEnd:   spanEnd,
		RuleSet:     rules.RuleSet,
		Details: domain.ViolationDetails{
			Expected:        fmt.Sprintf("one uninterrupted rest of at least %d minutes in the 7-day window", rules.WeeklyRestPeriodMinutes),
			Actual:          fmt.Sprintf("longest uninterrupted rest was %d minutes", longestMin),
			AffectedEntries: affected,
		},
	}
}

// checkWeeklyWorkingTime sums the span's durations against the weekly cap.
// Exceeding it is one error violation for the span.
func (e *Engine) checkWeeklyWorkingTime(tenantID, userID string, span []domain.TimeEntry, rules domain.RuleSetConfig, spanStart, spanEnd, detectedAt time.Time) *domain.ComplianceViolation {
	total := 0
	affected := make([]string, 0, len(span))
	for _, entry := range span {
		total += entry.DurationMinutes()
		affected = append(affected, entry.ID)
	}
	if total <= rules.MaxWeeklyWorkingTimeMinutes {
		return nil
	}

	return &domain.ComplianceViolation{
		ID:          domain.NewViolationID(tenantID, userID, domain.ViolationWeeklyWorkingTime, spanStart),
		TenantID:    tenantID,
		UserID:      userID,
		Type:        domain.ViolationWeeklyWorkingTime,
		Severity:    domain.SeverityError,
		DetectedAt:  detectedAt,
		PeriodStart: spanStart,
		PeriodEnd:   spanEnd,
		RuleSet:     rules.RuleSet,
		Details: domain.ViolationDetails{
			Expected:        fmt.Sprintf("at most %d minutes of working time in the 7-day window", rules.MaxWeeklyWorkingTimeMinutes),
			Actual:          fmt.Sprintf("%d minutes worked", total),
			AffectedEntries: affected,
		},
	}
}
