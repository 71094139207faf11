package domain

import (
	"fmt"
	"time"
)

// RuleSetConfig holds the configurable labor-time thresholds active for one
// tenant. There is exactly one active config per tenant; updates supersede it
// in place (last write wins) and the previous values are preserved in the
// audit trail, never in this record.
type RuleSetConfig struct {
	TenantID string `json:"tenant_id"`
	// RuleSet names the pack the config was seeded from, e.g. "eu" or "de".
	RuleSet string `json:"rule_set"`

	DailyRestPeriodMinutes  int `json:"daily_rest_period_minutes"`
	WeeklyRestPeriodMinutes int `json:"weekly_rest_period_minutes"`

	MaxDailyWorkingTimeMinutes                 int `json:"max_daily_working_time_minutes"`
	MaxDailyWorkingTimeWithCompensationMinutes int `json:"max_daily_working_time_with_compensation_minutes"`
	MaxWeeklyWorkingTimeMinutes                int `json:"max_weekly_working_time_minutes"`

	BreakRequiredAfterMinutes int `json:"break_required_after_minutes"`
	BreakDurationMinutes      int `json:"break_duration_minutes"`
	// Optional second escalation tier. Both fields are set together or not at
	// all; the tiers are not additive.
	BreakRequiredAfterMinutes2 *int `json:"break_required_after_minutes_2,omitempty"`
	BreakDurationMinutes2      *int `json:"break_duration_minutes_2,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// RuleSetPatch is a partial update to a RuleSetConfig. Nil fields are left
// untouched.
type RuleSetPatch struct {
	DailyRestPeriodMinutes  *int `json:"daily_rest_period_minutes,omitempty"`
	WeeklyRestPeriodMinutes *int `json:"weekly_rest_period_minutes,omitempty"`

	MaxDailyWorkingTimeMinutes                 *int `json:"max_daily_working_time_minutes,omitempty"`
	MaxDailyWorkingTimeWithCompensationMinutes *int `json:"max_daily_working_time_with_compensation_minutes,omitempty"`
	MaxWeeklyWorkingTimeMinutes                *int `json:"max_weekly_working_time_minutes,omitempty"`

	BreakRequiredAfterMinutes  *int `json:"break_required_after_minutes,omitempty"`
	BreakDurationMinutes       *int `json:"break_duration_minutes,omitempty"`
	BreakRequiredAfterMinutes2 *int `json:"break_required_after_minutes_2,omitempty"`
	BreakDurationMinutes2      *int `json:"break_duration_minutes_2,omitempty"`
}

// Validate rejects patches that would produce a nonsensical config.
func (p RuleSetPatch) Validate() error {
	positive := map[string]*int{
		"daily_rest_period_minutes":      p.DailyRestPeriodMinutes,
		"weekly_rest_period_minutes":     p.WeeklyRestPeriodMinutes,
		"max_daily_working_time_minutes": p.MaxDailyWorkingTimeMinutes,
		"max_daily_working_time_with_compensation_minutes": p.MaxDailyWorkingTimeWithCompensationMinutes,
		"max_weekly_working_time_minutes":                  p.MaxWeeklyWorkingTimeMinutes,
		"break_required_after_minutes":                     p.BreakRequiredAfterMinutes,
		"break_duration_minutes":                           p.BreakDurationMinutes,
		"break_required_after_minutes_2":                   p.BreakRequiredAfterMinutes2,
		"break_duration_minutes_2":                         p.BreakDurationMinutes2,
	}
	for field, v := range positive {
		if v != nil && *v <= 0 {
			return &ValidationError{Reason: fmt.Sprintf("%s must be a positive number of minutes", field)}
		}
	}
	if (p.BreakRequiredAfterMinutes2 == nil) != (p.BreakDurationMinutes2 == nil) {
		return &ValidationError{Reason: "second break tier requires both threshold and duration"}
	}
	return nil
}

// Apply merges the patch into the config, replacing only provided fields.
func (c *RuleSetConfig) Apply(p RuleSetPatch) {
	if p.DailyRestPeriodMinutes != nil {
		c.DailyRestPeriodMinutes = *p.DailyRestPeriodMinutes
	}
	if p.WeeklyRestPeriodMinutes != nil {
		c.WeeklyRestPeriodMinutes = *p.WeeklyRestPeriodMinutes
	}
	if p.MaxDailyWorkingTimeMinutes != nil {
		c.MaxDailyWorkingTimeMinutes = *p.MaxDailyWorkingTimeMinutes
	}
	if p.MaxDailyWorkingTimeWithCompensationMinutes != nil {
		c.MaxDailyWorkingTimeWithCompensationMinutes = *p.MaxDailyWorkingTimeWithCompensationMinutes
	}
	if p.MaxWeeklyWorkingTimeMinutes != nil {
		c.MaxWeeklyWorkingTimeMinutes = *p.MaxWeeklyWorkingTimeMinutes
	}
	if p.BreakRequiredAfterMinutes != nil {
		c.BreakRequiredAfterMinutes = *p.BreakRequiredAfterMinutes
	}
	if p.BreakDurationMinutes != nil {
		c.BreakDurationMinutes = *p.BreakDurationMinutes
	}
	if p.BreakRequiredAfterMinutes2 != nil {
		v := *p.BreakRequiredAfterMinutes2
		c.BreakRequiredAfterMinutes2 = &v
	}
	if p.BreakDurationMinutes2 != nil {
		v := *p.BreakDurationMinutes2
		c.BreakDurationMinutes2 = &v
	}
}
