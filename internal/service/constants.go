package service

// Credit-score scales per market.
const (
	ficoMin  = 300
	ficoMax  = 850
	cibilMin = 300
	cibilMax = 900
)

// Risk adjustment range: a composite risk score of 0 maps to the floor,
// a score of 1 to floor+span.
const (
	riskAdjustmentFloor = -0.03
	riskAdjustmentSpan  = 0.11
)

const (
	maxDefaultProbability = 0.99
	lossGivenDefault      = 0.4 // 60% recovery assumed on default
)

// DefaultStatisticsWindow is the number of most recent decisions the rolling
// statistics cover. Cumulative profit is lifetime, never windowed.
const DefaultStatisticsWindow = 100
