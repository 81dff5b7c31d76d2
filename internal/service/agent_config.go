package service

import (
	"fmt"
	"math"

	"github.com/creditai/pricing-service/internal/config"
	"github.com/creditai/pricing-service/internal/models"
)

// Rate bounds applied after adjustment, and the base rate used for countries
// without a dedicated entry.
const (
	MinRate         = 0.08
	MaxRate         = 0.36
	NeutralBaseRate = 0.15
)

// weightTolerance is the allowed deviation when checking that the three
// adjustment weights sum to 1.
const weightTolerance = 1e-6

// AgentConfig is the pricing configuration an agent is built with. It is
// treated as immutable after validation.
type AgentConfig struct {
	RiskWeight   float64
	MarketWeight float64
	ProfitWeight float64
	LearningRate float64 // reserved for outcome-driven weight updates
	BaseRates    map[string]float64
	MinRate      float64
	MaxRate      float64
}

// DefaultAgentConfig returns the stock configuration: 60/30/10 weights and
// the USA/India base-rate table.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		RiskWeight:   0.6,
		MarketWeight: 0.3,
		ProfitWeight: 0.1,
		LearningRate: 0.01,
		BaseRates: map[string]float64{
			models.CountryUSA:   0.12,
			models.CountryIndia: 0.18,
		},
		MinRate: MinRate,
		MaxRate: MaxRate,
	}
}

// NewAgentConfig builds the pricing configuration from the application
// config, keeping the stock base-rate table.
func NewAgentConfig(cfg *config.Config) AgentConfig {
	ac := DefaultAgentConfig()
	ac.RiskWeight = cfg.RiskWeight
	ac.MarketWeight = cfg.MarketWeight
	ac.ProfitWeight = cfg.ProfitWeight
	ac.LearningRate = cfg.LearningRate
	return ac
}

// Validate rejects configurations with negative weights, weights that do not
// sum to 1, or an inverted rate corridor.
func (c AgentConfig) Validate() error {
	if c.RiskWeight < 0 || c.MarketWeight < 0 || c.ProfitWeight < 0 {
		return &models.ConfigError{Reason: "adjustment weights must be non-negative"}
	}
	sum := c.RiskWeight + c.MarketWeight + c.ProfitWeight
	if math.Abs(sum-1.0) > weightTolerance {
		return &models.ConfigError{Reason: fmt.Sprintf("adjustment weights must sum to 1.0, got %.4f", sum)}
	}
	if c.MinRate >= c.MaxRate {
		return &models.ConfigError{Reason: "min rate must be below max rate"}
	}
	return nil
}

func (c AgentConfig) baseRate(country string) float64 {
	if rate, ok := c.BaseRates[country]; ok {
		return rate
	}
	return NeutralBaseRate
}
