package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/models"
)

func TestAgentConfigValidate(t *testing.T) {
	require.NoError(t, DefaultAgentConfig().Validate())

	cases := map[string]func(*AgentConfig){
		"negative weight":   func(c *AgentConfig) { c.RiskWeight = -0.1; c.MarketWeight = 0.9; c.ProfitWeight = 0.2 },
		"sum above one":     func(c *AgentConfig) { c.RiskWeight = 0.8 },
		"sum below one":     func(c *AgentConfig) { c.ProfitWeight = 0 },
		"inverted corridor": func(c *AgentConfig) { c.MinRate = 0.4 },
	}
	for name, mutate := range cases {
		cfg := DefaultAgentConfig()
		mutate(&cfg)
		err := cfg.Validate()
		var cfgErr *models.ConfigError
		require.ErrorAs(t, err, &cfgErr, name)
	}
}

func TestAgentConfigToleratesTinyWeightDrift(t *testing.T) {
	cfg := DefaultAgentConfig()
	cfg.RiskWeight = 0.6 + 5e-7
	assert.NoError(t, cfg.Validate())
}

func TestNewAgentConfigOverridesWeights(t *testing.T) {
	cfg := NewAgentConfig(&config.Config{
		RiskWeight:   0.5,
		MarketWeight: 0.4,
		ProfitWeight: 0.1,
		LearningRate: 0.05,
	})

	assert.Equal(t, 0.5, cfg.RiskWeight)
	assert.Equal(t, 0.4, cfg.MarketWeight)
	assert.Equal(t, 0.1, cfg.ProfitWeight)
	assert.Equal(t, 0.05, cfg.LearningRate)
	assert.Equal(t, 0.12, cfg.BaseRates[models.CountryUSA])
	assert.Equal(t, 0.18, cfg.BaseRates[models.CountryIndia])
	assert.NoError(t, cfg.Validate())
}

func TestBaseRateFallback(t *testing.T) {
	cfg := DefaultAgentConfig()

	assert.Equal(t, 0.12, cfg.baseRate(models.CountryUSA))
	assert.Equal(t, 0.18, cfg.baseRate(models.CountryIndia))
	assert.Equal(t, NeutralBaseRate, cfg.baseRate("Brazil"))
}
