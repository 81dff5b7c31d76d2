package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/models"
	"github.com/creditai/pricing-service/internal/repository"
)

// ErrUnknownDecision is returned when an outcome references a decision ID
// the ledger has never seen.
var ErrUnknownDecision = errors.New("unknown decision")

// LearningStrategy receives realized loan outcomes matched to their original
// decisions. The shipped implementation is a no-op; an outcome-driven weight
// tuner can be plugged in without changing the agent's surface.
type LearningStrategy interface {
	LearnFromOutcome(decision *models.Decision, outcome models.Outcome) error
}

// NoopLearning acknowledges outcomes without acting on them. It exists so
// outcome reporting has a stable contract before a real strategy lands.
type NoopLearning struct{}

func (NoopLearning) LearnFromOutcome(decision *models.Decision, outcome models.Outcome) error {
	return nil
}

// PricingAgent ties the rate calculator to the decision ledger and owns
// ledger persistence. Not safe for concurrent use; callers serialize.
type PricingAgent struct {
	config   AgentConfig
	ledger   *DecisionLedger
	store    repository.LedgerStore
	learning LearningStrategy
	log      *logrus.Logger
}

// NewPricingAgent builds an agent after validating the configuration. The
// store may be nil, in which case export and import are unavailable.
func NewPricingAgent(cfg AgentConfig, store repository.LedgerStore, log *logrus.Logger) (*PricingAgent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PricingAgent{
		config:   cfg,
		ledger:   NewDecisionLedger(),
		store:    store,
		learning: NoopLearning{},
		log:      log,
	}, nil
}

// SetLearningStrategy swaps the outcome-learning strategy. Passing nil
// restores the no-op default.
func (a *PricingAgent) SetLearningStrategy(s LearningStrategy) {
	if s == nil {
		s = NoopLearning{}
	}
	a.learning = s
}

// Price validates the request, computes a rate decision, records it in the
// ledger and returns it. Rates and probabilities are stored rounded to four
// decimal places, money amounts to two.
func (a *PricingAgent) Price(req *models.ApplicantRequest) (*models.Decision, error) {
	applicant, err := req.Applicant()
	if err != nil {
		return nil, err
	}

	components := ComputeRate(applicant, a.config)

	decision := models.Decision{
		ID:                 uuid.New().String(),
		Timestamp:          time.Now().UTC(),
		ApplicantID:        applicant.ID,
		Country:            applicant.Country,
		CreditScore:        applicant.CreditScore,
		LoanAmount:         applicant.LoanAmount,
		BaseRate:           round4(components.BaseRate),
		RiskAdjustment:     round4(components.RiskAdjustment),
		MarketAdjustment:   round4(components.MarketAdjustment),
		ProfitAdjustment:   round4(components.ProfitAdjustment),
		TotalAdjustment:    round4(components.TotalAdjustment),
		FinalRate:          round4(components.FinalRate),
		DefaultProbability: round4(components.DefaultProbability),
		ExpectedProfit:     round2(components.ExpectedProfit),
		Reasoning:          components.Reasoning,
	}

	a.ledger.Append(decision)
	a.log.Infof("Priced applicant %s (%s): final rate %.2f%%, expected profit %.2f",
		applicant.ID, applicant.Country, decision.FinalRate*100, decision.ExpectedProfit)
	return &decision, nil
}

// Statistics summarizes the ledger over the most recent window decisions.
// window <= 0 selects the default of 100.
func (a *PricingAgent) Statistics(window int) models.Statistics {
	return a.ledger.Statistics(window)
}

// DecisionCount returns the lifetime number of priced applications.
func (a *PricingAgent) DecisionCount() int {
	return a.ledger.Len()
}

// ExportLedger writes the full decision history to the snapshot store.
func (a *PricingAgent) ExportLedger() error {
	if a.store == nil {
		return fmt.Errorf("no ledger store configured")
	}
	decisions := a.ledger.Decisions()
	if err := a.store.Save(decisions); err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}
	a.log.Infof("Exported ledger: %d decisions", len(decisions))
	return nil
}

// ImportLedger replaces the in-memory ledger with the stored snapshot and
// recomputes aggregates from it. On any read or decode failure the current
// ledger is left untouched.
func (a *PricingAgent) ImportLedger() (int, error) {
	if a.store == nil {
		return 0, fmt.Errorf("no ledger store configured")
	}
	decisions, err := a.store.Load()
	if err != nil {
		return 0, fmt.Errorf("import ledger: %w", err)
	}
	a.ledger.Restore(decisions)
	a.log.Infof("Imported ledger: %d decisions", len(decisions))
	return len(decisions), nil
}

// LearnFromOutcome forwards a realized outcome to the learning strategy.
// The decision must exist in the ledger so bad IDs are surfaced instead of
// silently accepted.
func (a *PricingAgent) LearnFromOutcome(outcome models.Outcome) error {
	decision := a.ledger.FindByID(outcome.DecisionID)
	if decision == nil {
		return fmt.Errorf("%w: %s", ErrUnknownDecision, outcome.DecisionID)
	}
	if err := a.learning.LearnFromOutcome(decision, outcome); err != nil {
		return err
	}
	a.log.Debugf("Recorded outcome for decision %s: defaulted=%t profit=%.2f",
		outcome.DecisionID, outcome.Defaulted, outcome.Profit)
	return nil
}

// round4 rounds rates and probabilities to four decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// round2 rounds money amounts to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
