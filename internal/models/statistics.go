package models

// Statistics summarizes the agent's decision history. The adjustment, rate
// and default-probability means cover the most recent window of decisions;
// the decision count and expected profit are lifetime totals.
type Statistics struct {
	TotalDecisions      int     `json:"total_decisions"`
	AvgRateAdjustment   float64 `json:"avg_rate_adjustment"`
	AvgFinalRate        float64 `json:"avg_final_rate"`
	TotalExpectedProfit float64 `json:"total_expected_profit"`
	AvgDefaultProb      float64 `json:"avg_default_probability"`
}
