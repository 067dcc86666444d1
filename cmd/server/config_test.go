package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "timewallet.db", cfg.DBPath)
	assert.Equal(t, 60, cfg.DailyLimit)
	assert.Equal(t, time.Minute, cfg.RolloverInterval)
	assert.Equal(t, 5*time.Second, cfg.NativeInterval)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_EnvOverridesDailyLimit(t *testing.T) {
	t.Setenv("TIMEWALLET_DAILY_LIMIT", "120")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.DailyLimit)
}

func TestLoadConfig_RejectsNonPositiveDailyLimit(t *testing.T) {
	t.Setenv("TIMEWALLET_DAILY_LIMIT", "0")

	_, err := LoadConfig()
	require.Error(t, err)
}
