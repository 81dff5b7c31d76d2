package models

import "time"

// RateComponents holds the raw output of the rate calculator: the base rate,
// the three adjustments and the derived metrics, unrounded.
type RateComponents struct {
	BaseRate           float64
	RiskAdjustment     float64
	MarketAdjustment   float64
	ProfitAdjustment   float64
	TotalAdjustment    float64
	FinalRate          float64
	DefaultProbability float64
	ExpectedProfit     float64
	Reasoning          []string
}

// Decision represents a priced credit application. Rates, adjustments and
// probabilities are stored rounded to 4 decimals and profit to 2, which is
// also the exported ledger format.
type Decision struct {
	ID                 string    `json:"decision_id"`
	Timestamp          time.Time `json:"timestamp"`
	ApplicantID        string    `json:"applicant_id"`
	Country            string    `json:"country"`
	CreditScore        int       `json:"credit_score"`
	LoanAmount         float64   `json:"loan_amount"`
	BaseRate           float64   `json:"base_rate"`
	RiskAdjustment     float64   `json:"risk_adjustment"`
	MarketAdjustment   float64   `json:"market_adjustment"`
	ProfitAdjustment   float64   `json:"profit_adjustment"`
	TotalAdjustment    float64   `json:"total_adjustment"`
	FinalRate          float64   `json:"final_rate"`
	DefaultProbability float64   `json:"default_probability"`
	ExpectedProfit     float64   `json:"expected_profit"`
	Reasoning          []string  `json:"reasoning"`
}
