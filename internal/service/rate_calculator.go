package service

import (
	"math"

	"github.com/creditai/pricing-service/internal/models"
)

// ComputeRate prices one applicant against the given configuration. It is a
// pure function over its inputs: every arithmetic path is total, so pricing
// itself cannot fail once the applicant payload passed validation.
func ComputeRate(app *models.Applicant, cfg AgentConfig) models.RateComponents {
	base := cfg.baseRate(app.Country)
	risk := riskAdjustment(app)
	market := marketAdjustment(app.CreditScore, app.Country)
	profit := profitAdjustment(app.LoanAmount)

	total := risk*cfg.RiskWeight + market*cfg.MarketWeight + profit*cfg.ProfitWeight
	final := clamp(base+total, cfg.MinRate, cfg.MaxRate)
	p := defaultProbability(app)

	return models.RateComponents{
		BaseRate:           base,
		RiskAdjustment:     risk,
		MarketAdjustment:   market,
		ProfitAdjustment:   profit,
		TotalAdjustment:    total,
		FinalRate:          final,
		DefaultProbability: p,
		ExpectedProfit:     expectedProfit(app.LoanAmount, final, p),
		Reasoning:          buildReasoning(risk, market, profit, app),
	}
}

// normalizeScore maps a credit score onto [0, 1] for its market's scale:
// FICO (300-850) for USA, CIBIL (300-900) for India and any other market.
// Scores outside the scale are not clamped.
func normalizeScore(creditScore int, country string) float64 {
	if country == models.CountryUSA {
		return float64(creditScore-ficoMin) / float64(ficoMax-ficoMin)
	}
	return float64(creditScore-cibilMin) / float64(cibilMax-cibilMin)
}

// riskAdjustment blends the normalized score with debt-to-income and
// loan-to-income ratios into a premium between -3% and +8%.
func riskAdjustment(app *models.Applicant) float64 {
	norm := normalizeScore(app.CreditScore, app.Country)
	income := math.Max(app.Income, 1)
	debtToIncome := app.ExistingDebt / income
	loanToIncome := app.LoanAmount / income

	riskScore := (1-norm)*0.5 + math.Min(debtToIncome, 1.0)*0.3 + math.Min(loanToIncome, 1.0)*0.2
	return riskAdjustmentFloor + riskScore*riskAdjustmentSpan
}

// marketAdjustment grants tiered discounts to applicants the competition
// would also want. Tiers follow the market's own score scale.
func marketAdjustment(creditScore int, country string) float64 {
	if country == models.CountryUSA {
		switch {
		case creditScore >= 750:
			return -0.02
		case creditScore >= 700:
			return -0.01
		}
		return 0
	}
	switch {
	case creditScore >= 800:
		return -0.02
	case creditScore >= 750:
		return -0.01
	}
	return 0
}

// profitAdjustment discounts larger loans, where absolute interest income
// absorbs the rate concession.
func profitAdjustment(loanAmount float64) float64 {
	switch {
	case loanAmount >= 25000:
		return -0.005
	case loanAmount >= 15000:
		return -0.0025
	}
	return 0
}

// defaultProbability estimates the chance of default from the normalized
// score and the debt load, capped at 99% and floored at zero.
func defaultProbability(app *models.Applicant) float64 {
	norm := normalizeScore(app.CreditScore, app.Country)
	debtToIncome := app.ExistingDebt / math.Max(app.Income, 1)
	return clamp(0.25*(1-norm)+debtToIncome*0.1, 0, maxDefaultProbability)
}

// expectedProfit nets interest income against the expected default loss.
func expectedProfit(loanAmount, rate, defaultProb float64) float64 {
	interestIncome := loanAmount * rate
	defaultLoss := loanAmount * lossGivenDefault
	return interestIncome*(1-defaultProb) - defaultLoss*defaultProb
}

// buildReasoning explains the decision in a fixed order: risk verdict first,
// then market and volume discounts when granted, then a score insight when
// the score is notably good or bad for its market.
func buildReasoning(riskAdj, marketAdj, profitAdj float64, app *models.Applicant) []string {
	reasons := make([]string, 0, 4)

	switch {
	case riskAdj < -0.01:
		reasons = append(reasons, "✅ Excellent credit profile - reduced risk premium")
	case riskAdj > 0.05:
		reasons = append(reasons, "⚠️ Higher risk profile - increased rate for protection")
	default:
		reasons = append(reasons, "Standard risk assessment")
	}

	if marketAdj < 0 {
		reasons = append(reasons, "🎯 Competitive rate to win quality applicant")
	}
	if profitAdj < 0 {
		reasons = append(reasons, "💰 Volume discount for larger loan amount")
	}

	if app.Country == models.CountryUSA {
		if app.CreditScore >= 750 {
			reasons = append(reasons, "Excellent FICO score (750+)")
		} else if app.CreditScore < 650 {
			reasons = append(reasons, "Below-average FICO score")
		}
	} else {
		if app.CreditScore >= 800 {
			reasons = append(reasons, "Excellent CIBIL score (800+)")
		} else if app.CreditScore < 700 {
			reasons = append(reasons, "Below-average CIBIL score")
		}
	}
	return reasons
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
