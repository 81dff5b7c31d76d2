package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/creditai/pricing-service/internal/models"
)

// ErrPredictorUnavailable is returned when no approval model endpoint is
// configured.
var ErrPredictorUnavailable = errors.New("approval model not configured")

// Approval thresholds and limit parameters.
const (
	loanTermMonths  = 36
	baseCreditLimit = 5000
	maxCreditLimit  = 30000
	amexLimitBonus  = 1.2
	defaultUSDINR   = 83.0
)

// Predictor scores a feature vector with the external approval model and
// returns the default probability in [0, 1].
type Predictor interface {
	PredictDefault(ctx context.Context, features models.FeatureVector) (float64, error)
}

// ExchangeRates supplies the working USD/INR rate for INR conversions.
type ExchangeRates interface {
	USDINR(ctx context.Context) (rate float64, source string)
}

// ApprovalService runs the card-approval flows around the external default
// model: USA applications are scored directly, India applications are first
// translated onto the USA feature schema.
type ApprovalService struct {
	predictor Predictor
	rates     ExchangeRates
	log       *logrus.Logger
}

// NewApprovalService builds the approval service. predictor may be nil when
// no model endpoint is configured; approvals then fail with
// ErrPredictorUnavailable. rates may be nil, pinning USD/INR at the default.
func NewApprovalService(predictor Predictor, rates ExchangeRates, log *logrus.Logger) *ApprovalService {
	return &ApprovalService{predictor: predictor, rates: rates, log: log}
}

// ApproveUSA assesses a USA card application.
func (s *ApprovalService) ApproveUSA(ctx context.Context, req *models.USAApprovalRequest) (*models.ApprovalResult, error) {
	result, _, err := s.approveUSA(ctx, req)
	return result, err
}

// approveUSA also returns the numeric USD credit limit so the India flow can
// convert it without re-parsing the formatted text.
func (s *ApprovalService) approveUSA(ctx context.Context, req *models.USAApprovalRequest) (*models.ApprovalResult, int, error) {
	if s.predictor == nil {
		return nil, 0, ErrPredictorUnavailable
	}

	features := buildUSAFeatures(req)
	probability, err := s.predictor.PredictDefault(ctx, features)
	if err != nil {
		return nil, 0, fmt.Errorf("predict default probability: %w", err)
	}

	// Payment history shifts the modeled risk before thresholding.
	switch req.PaymentHistory {
	case PaymentAlwaysOnTime:
		probability *= 0.8
	case PaymentFrequentLate:
		probability *= 1.3
	}
	if probability > 1.0 {
		probability = 1.0
	}

	var decision, riskLevel string
	switch {
	case probability < 0.3:
		decision, riskLevel = "✅ APPROVED", "🟢 LOW RISK"
	case probability < 0.5:
		decision, riskLevel = "✅ APPROVED", "🟡 MEDIUM RISK"
	default:
		decision, riskLevel = "❌ REJECTED", "🔴 HIGH RISK"
	}
	approved := probability < 0.5

	limitText := "N/A"
	var creditLimit int
	if approved {
		creditLimit = usaCreditLimit(req.AnnualIncome, req.CreditHistoryYears, probability, req.CardType)
		limitText = "$" + formatThousands(int64(creditLimit))
	}

	var apr string
	switch {
	case probability < 0.2:
		apr = "10-13%"
	case probability < 0.4:
		apr = "13-18%"
	default:
		apr = "18-25%"
	}

	var message string
	if approved {
		if req.CardType == cardAmex {
			message = fmt.Sprintf("💎 Premium approval! %s card with %s limit. Excellent payment history recognized!",
				req.CardType, limitText)
		} else {
			message = fmt.Sprintf("✨ Approved for %s card! Credit limit: %s. %g years of credit history helped.",
				req.CardType, limitText, req.CreditHistoryYears)
		}
	} else {
		if req.PaymentHistory == PaymentFrequentLate {
			message = "⚠️ Application denied due to payment history. Improve on-time payments and reapply in 6 months."
		} else {
			message = "⚠️ Application denied. Consider improving: DTI ratio, credit history length, or reducing credit inquiries."
		}
	}

	s.log.Infof("USA approval: loan %.0f, grade %s, p=%.4f -> %s", req.LoanAmount, req.Grade, probability, decision)

	return &models.ApprovalResult{
		Approved:           approved,
		Decision:           decision,
		DefaultProbability: probability,
		Probability:        fmt.Sprintf("%.2f%%", probability*100),
		RiskLevel:          riskLevel,
		CreditLimit:        limitText,
		RecommendedAPR:     apr,
		Message:            message,
	}, creditLimit, nil
}

// ApproveIndia assesses an India card application by translating it onto the
// USA schema, scoring it there, and converting the outcome back.
func (s *ApprovalService) ApproveIndia(ctx context.Context, req *models.IndiaApprovalRequest) (*models.ApprovalResult, error) {
	rate := s.workingUSDINR(ctx)
	loanUSD := req.LoanAmountINR / rate
	incomeUSD := req.AnnualIncomeINR / rate

	grade, intRate := cibilGrade(req.CIBILScore)

	// Unverified documents cost both rate and effective score.
	cibil := req.CIBILScore
	if !req.PANVerified {
		intRate += 2
		cibil -= 50
	}
	if !req.AadhaarVerified {
		intRate += 1.5
		cibil -= 30
	}

	usaReq := &models.USAApprovalRequest{
		LoanAmount:         loanUSD,
		InterestRate:       intRate,
		Grade:              grade,
		EmploymentLength:   mapIndiaEmpLength(req.EmploymentType),
		HomeOwnership:      mapIndiaHomeOwnership(req.CityTier),
		AnnualIncome:       incomeUSD,
		Purpose:            mapIndiaPurpose(req.LoanPurpose),
		DTI:                float64(req.ExistingLoans) * 5,
		CreditInquiries:    1,
		OpenAccounts:       5,
		RevolvingBalance:   loanUSD * 0.3,
		RevolvingUtil:      30,
		TotalAccounts:      8,
		CardType:           mapIndiaCard(req.CardType),
		CreditHistoryYears: mapIndiaHistoryYears(req.CreditHistory),
		PaymentHistory:     req.PaymentHistory,
	}

	result, limitUSD, err := s.approveUSA(ctx, usaReq)
	if err != nil {
		return nil, err
	}

	if result.Approved {
		limitINR := int64(math.Round(float64(limitUSD) * rate))
		result.CreditLimit = "₹" + formatThousands(limitINR)

		var verification string
		switch {
		case req.PANVerified && req.AadhaarVerified:
			verification = "✅ Full verification complete (PAN + Aadhaar)"
		case req.PANVerified:
			verification = "⚠️ Complete Aadhaar verification for better rates"
		case req.AadhaarVerified:
			verification = "⚠️ Complete PAN verification required"
		default:
			verification = "⚠️ Both PAN and Aadhaar verification needed"
		}
		result.Message = fmt.Sprintf("✅ Approved for %s card! CIBIL: %d | %s", req.CardType, cibil, verification)
	} else {
		switch {
		case cibil < 650:
			result.Message = fmt.Sprintf("❌ Denied. CIBIL score (%d) below minimum 650. Improve credit score and reapply.", cibil)
		case !req.PANVerified || !req.AadhaarVerified:
			result.Message = "❌ Denied. Complete PAN and Aadhaar verification required for approval."
		default:
			result.Message = fmt.Sprintf("❌ Denied. High debt-to-income ratio (%d existing loans) or insufficient credit history.", req.ExistingLoans)
		}
	}
	return result, nil
}

func (s *ApprovalService) workingUSDINR(ctx context.Context) float64 {
	if s.rates == nil {
		return defaultUSDINR
	}
	rate, _ := s.rates.USDINR(ctx)
	return rate
}

// buildUSAFeatures assembles the model input, folding payment and credit
// history into the grade and the card network into the rate.
func buildUSAFeatures(req *models.USAApprovalRequest) models.FeatureVector {
	gradeValue := float64(encodeGrade(req.Grade))

	switch req.PaymentHistory {
	case PaymentAlwaysOnTime:
		gradeValue -= 0.5
	case PaymentOccasionalLate:
		// neutral
	default:
		gradeValue += 1.0
	}

	if req.CreditHistoryYears >= 7 {
		gradeValue -= 0.3
	} else if req.CreditHistoryYears < 2 {
		gradeValue += 0.5
	}
	gradeValue = clamp(gradeValue, 0, 6)

	interestRate := req.InterestRate + cardRateAdjustment[req.CardType]

	delinq := 1
	if req.PaymentHistory == PaymentAlwaysOnTime {
		delinq = 0
	}

	return models.FeatureVector{
		LoanAmnt:           req.LoanAmount,
		IntRate:            interestRate,
		Installment:        annuityInstallment(req.LoanAmount, interestRate),
		Grade:              int(gradeValue),
		EmpLength:          encodeEmpLength(req.EmploymentLength),
		HomeOwnership:      encodeHomeOwnership(req.HomeOwnership),
		AnnualInc:          req.AnnualIncome,
		VerificationStatus: 1,
		Purpose:            encodePurpose(req.Purpose),
		DTI:                req.DTI,
		Delinq2Yrs:         delinq,
		InqLast6Mths:       req.CreditInquiries,
		OpenAcc:            req.OpenAccounts,
		PubRec:             0,
		RevolBal:           req.RevolvingBalance,
		RevolUtil:          req.RevolvingUtil,
		TotalAcc:           req.TotalAccounts,
	}
}

// annuityInstallment computes the fixed monthly payment over the standard
// 36-month term.
func annuityInstallment(loanAmount, annualRatePct float64) float64 {
	monthlyRate := annualRatePct / 100 / 12
	if monthlyRate <= 0 {
		return loanAmount / loanTermMonths
	}
	factor := math.Pow(1+monthlyRate, loanTermMonths)
	return loanAmount * monthlyRate * factor / (factor - 1)
}

// usaCreditLimit sizes the limit from income, history and modeled risk. The
// Amex bonus applies after the cap.
func usaCreditLimit(annualIncome, historyYears, probability float64, cardType string) int {
	incomeFactor := math.Min(annualIncome/50000, 3)
	historyFactor := math.Min(historyYears/10, 1.5)
	riskMultiplier := 1 - probability

	limit := int(baseCreditLimit * incomeFactor * historyFactor * (1 + riskMultiplier))
	if limit > maxCreditLimit {
		limit = maxCreditLimit
	}
	if cardType == cardAmex {
		limit = int(float64(limit) * amexLimitBonus)
	}
	return limit
}

// cibilGrade maps a CIBIL score to the model's grade letter and the quoted
// interest rate for that band.
func cibilGrade(score int) (string, float64) {
	switch {
	case score >= 800:
		return "A", 10.5
	case score >= 750:
		return "B", 12.5
	case score >= 700:
		return "C", 15.0
	case score >= 650:
		return "D", 18.0
	case score >= 600:
		return "E", 22.0
	}
	return "F", 25.0
}

// formatThousands renders n with comma separators, e.g. 30000 -> "30,000".
func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	start := 0
	if s[0] == '-' {
		start = 1
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	out = append(out, s[:start]...)
	digits := s[start:]
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
		if len(digits) > lead {
			out = append(out, ',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		out = append(out, digits[i:i+3]...)
		if i+3 < len(digits) {
			out = append(out, ',')
		}
	}
	return string(out)
}
