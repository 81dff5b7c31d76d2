package models

// Outcome represents the realized result of a priced loan, reported back to
// the agent for future learning.
type Outcome struct {
	DecisionID string  `json:"decision_id"`
	Defaulted  bool    `json:"defaulted"`
	Profit     float64 `json:"profit"`
}
