package service

import (
	"gonum.org/v1/gonum/stat"

	"github.com/creditai/pricing-service/internal/models"
)

// DecisionLedger is an append-only, in-memory log of pricing decisions with
// running lifetime aggregates. It is not safe for concurrent use on its own;
// the HTTP layer serializes access.
type DecisionLedger struct {
	decisions      []models.Decision
	totalDecisions int
	totalProfit    float64
}

// NewDecisionLedger creates an empty ledger.
func NewDecisionLedger() *DecisionLedger {
	return &DecisionLedger{decisions: []models.Decision{}}
}

// Append records a decision and updates the lifetime aggregates.
func (l *DecisionLedger) Append(d models.Decision) {
	l.decisions = append(l.decisions, d)
	l.totalDecisions++
	l.totalProfit += d.ExpectedProfit
}

// Len returns the number of decisions currently held.
func (l *DecisionLedger) Len() int {
	return len(l.decisions)
}

// Decisions returns a copy of the recorded decision sequence, oldest first.
func (l *DecisionLedger) Decisions() []models.Decision {
	out := make([]models.Decision, len(l.decisions))
	copy(out, l.decisions)
	return out
}

// FindByID returns the decision with the given ID, or nil when absent.
func (l *DecisionLedger) FindByID(id string) *models.Decision {
	for i := range l.decisions {
		if l.decisions[i].ID == id {
			return &l.decisions[i]
		}
	}
	return nil
}

// Statistics summarizes the ledger: mean total adjustment, final rate and
// default probability over the most recent window decisions, plus lifetime
// decision count and cumulative expected profit. window <= 0 selects
// DefaultStatisticsWindow. An empty ledger yields a zero-valued summary.
func (l *DecisionLedger) Statistics(window int) models.Statistics {
	if len(l.decisions) == 0 {
		return models.Statistics{}
	}
	if window <= 0 {
		window = DefaultStatisticsWindow
	}
	recent := l.decisions
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	adjustments := make([]float64, len(recent))
	rates := make([]float64, len(recent))
	probs := make([]float64, len(recent))
	for i, d := range recent {
		adjustments[i] = d.TotalAdjustment
		rates[i] = d.FinalRate
		probs[i] = d.DefaultProbability
	}

	return models.Statistics{
		TotalDecisions:      l.totalDecisions,
		AvgRateAdjustment:   round4(stat.Mean(adjustments, nil)),
		AvgFinalRate:        round4(stat.Mean(rates, nil)),
		TotalExpectedProfit: round2(l.totalProfit),
		AvgDefaultProb:      round4(stat.Mean(probs, nil)),
	}
}

// Restore replaces the ledger contents with the given sequence and
// recomputes the lifetime aggregates from it.
func (l *DecisionLedger) Restore(decisions []models.Decision) {
	l.decisions = make([]models.Decision, len(decisions))
	copy(l.decisions, decisions)
	l.totalDecisions = len(decisions)
	l.totalProfit = 0
	for _, d := range decisions {
		l.totalProfit += d.ExpectedProfit
	}
}
