package rulepack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiftwise/shiftwise/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	packs, err := LoadDefaults()
	assert.NoError(t, err)
	assert.Equal(t, []string{"de", "eu"}, packs.Names())
}

func TestDefaults_EU(t *testing.T) {
	packs, err := LoadDefaults()
	assert.NoError(t, err)

	cfg, err := packs.Defaults("eu")
	assert.NoError(t, err)
	assert.Equal(t, "eu", cfg.RuleSet)
	assert.Equal(t, 660, cfg.DailyRestPeriodMinutes)
	assert.Equal(t, 1440, cfg.WeeklyRestPeriodMinutes)
	assert.Equal(t, 480, cfg.MaxDailyWorkingTimeMinutes)
	assert.Equal(t, 2880, cfg.MaxWeeklyWorkingTimeMinutes)
	assert.Nil(t, cfg.BreakRequiredAfterMinutes2)
}

func TestDefaults_DESecondTier(t *testing.T) {
	packs, err := LoadDefaults()
	assert.NoError(t, err)

	cfg, err := packs.Defaults("de")
	assert.NoError(t, err)
	if assert.NotNil(t, cfg.BreakRequiredAfterMinutes2) {
		assert.Equal(t, 540, *cfg.BreakRequiredAfterMinutes2)
	}
	if assert.NotNil(t, cfg.BreakDurationMinutes2) {
		assert.Equal(t, 45, *cfg.BreakDurationMinutes2)
	}
}

func TestDefaults_UnknownPack(t *testing.T) {
	packs, err := LoadDefaults()
	assert.NoError(t, err)

	_, err = packs.Defaults("atlantis")
	assert.True(t, domain.IsNotFound(err))
}

func TestDefaults_ReturnsCopies(t *testing.T) {
	packs, err := LoadDefaults()
	assert.NoError(t, err)

	first, err := packs.Defaults("de")
	assert.NoError(t, err)
	*first.BreakRequiredAfterMinutes2 = 999

	second, err := packs.Defaults("de")
	assert.NoError(t, err)
	assert.Equal(t, 540, *second.BreakRequiredAfterMinutes2)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte("packs: {}"))
	assert.Error(t, err)

	_, err = Load([]byte("not: [valid"))
	assert.Error(t, err)
}
