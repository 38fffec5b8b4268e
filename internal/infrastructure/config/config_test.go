package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pos-terminal", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Collaborators.Timeout)
	assert.Equal(t, "USD", cfg.POS.DisplayCurrency)
	assert.Equal(t, "V00000000", cfg.POS.WalkInTaxID)
	assert.Equal(t, 20, cfg.POS.SearchPageSize)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "no cross-origin access until configured")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("POS_APP_PORT", "9090")
	t.Setenv("POS_POS_DISPLAY_CURRENCY", "VES")
	t.Setenv("POS_COLLABORATORS_FINANCE_BASE_URL", "http://finance:8000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "VES", cfg.POS.DisplayCurrency)
	assert.Equal(t, "http://finance:8000", cfg.Collaborators.FinanceBaseURL)
}

func TestValidate(t *testing.T) {
	t.Run("display currency", func(t *testing.T) {
		t.Setenv("POS_POS_DISPLAY_CURRENCY", "EUR")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("wildcard cors rejected in production", func(t *testing.T) {
		cfg := &Config{
			App:  AppConfig{Env: "production"},
			HTTP: HTTPConfig{CORSAllowOrigins: []string{"*"}},
			POS:  POSConfig{DisplayCurrency: "USD"},
		}
		assert.Error(t, cfg.validate())
	})

	t.Run("sampling ratio bounds", func(t *testing.T) {
		cfg := &Config{
			POS:       POSConfig{DisplayCurrency: "USD"},
			Telemetry: TelemetryConfig{SamplingRatio: 1.5},
		}
		assert.Error(t, cfg.validate())
	})
}
