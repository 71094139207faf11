// Package rulepack ships the built-in default rule sets tenants are seeded
// from. The thresholds are configurable data; the packs only provide sane
// starting values.
package rulepack

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/shiftwise/shiftwise/internal/domain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type packFile struct {
	Packs map[string]packEntry `yaml:"packs"`
}

type packEntry struct {
	DailyRestPeriodMinutes                     int  `yaml:"daily_rest_period_minutes"`
	WeeklyRestPeriodMinutes                    int  `yaml:"weekly_rest_period_minutes"`
	MaxDailyWorkingTimeMinutes                 int  `yaml:"max_daily_working_time_minutes"`
	MaxDailyWorkingTimeWithCompensationMinutes int  `yaml:"max_daily_working_time_with_compensation_minutes"`
	MaxWeeklyWorkingTimeMinutes                int  `yaml:"max_weekly_working_time_minutes"`
	BreakRequiredAfterMinutes                  int  `yaml:"break_required_after_minutes"`
	BreakDurationMinutes                       int  `yaml:"break_duration_minutes"`
	BreakRequiredAfterMinutes2                 *int `yaml:"break_required_after_minutes_2"`
	BreakDurationMinutes2                      *int `yaml:"break_duration_minutes_2"`
}

// Pack resolves named default rule sets.
type Pack struct {
	entries map[string]packEntry
}

// LoadDefaults parses the embedded pack file.
func LoadDefaults() (*Pack, error) {
	return Load(defaultsYAML)
}

// Load parses a pack file from raw YAML.
func Load(raw []byte) (*Pack, error) {
	var file packFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule packs: %w", err)
	}
	if len(file.Packs) == 0 {
		return nil, fmt.Errorf("rule pack file contains no packs")
	}
	return &Pack{entries: file.Packs}, nil
}

// Names lists the available pack names, sorted.
func (p *Pack) Names() []string {
	names := make([]string, 0, len(p.entries))
	for name := range p.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a fresh RuleSetConfig for the named pack. The caller owns
// the tenant and audit stamps.
func (p *Pack) Defaults(name string) (domain.RuleSetConfig, error) {
	entry, ok := p.entries[name]
	if !ok {
		return domain.RuleSetConfig{}, &domain.NotFoundError{Resource: "rule pack", ID: name}
	}
	cfg := domain.RuleSetConfig{
		RuleSet:                 name,
		DailyRestPeriodMinutes:  entry.DailyRestPeriodMinutes,
		WeeklyRestPeriodMinutes: entry.WeeklyRestPeriodMinutes,
		MaxDailyWorkingTimeMinutes:                 entry.MaxDailyWorkingTimeMinutes,
		MaxDailyWorkingTimeWithCompensationMinutes: entry.MaxDailyWorkingTimeWithCompensationMinutes,
		MaxWeeklyWorkingTimeMinutes:                entry.MaxWeeklyWorkingTimeMinutes,
		BreakRequiredAfterMinutes:                  entry.BreakRequiredAfterMinutes,
		BreakDurationMinutes:                       entry.BreakDurationMinutes,
	}
	if entry.BreakRequiredAfterMinutes2 != nil {
		v := *entry.BreakRequiredAfterMinutes2
		cfg.BreakRequiredAfterMinutes2 = &v
	}
	if entry.BreakDurationMinutes2 != nil {
		v := *entry.BreakDurationMinutes2
		cfg.BreakDurationMinutes2 = &v
	}
	return cfg, nil
}
