package service

// Categorical encodings matching the schema the approval model was trained
// on. Lookups fall back to the same defaults the training pipeline used.

var gradeEncoding = map[string]int{
	"A": 0, "B": 1, "C": 2, "D": 3, "E": 4, "F": 5, "G": 6,
}

var empLengthEncoding = map[string]int{
	"< 1 year": 0, "1 year": 1, "2 years": 2, "3 years": 3, "4 years": 4,
	"5 years": 5, "6 years": 6, "7 years": 7, "8 years": 8, "9 years": 9,
	"10+ years": 10,
}

var homeOwnershipEncoding = map[string]int{
	"RENT": 0, "MORTGAGE": 1, "OWN": 2, "OTHER": 3,
}

var purposeEncoding = map[string]int{
	"debt_consolidation": 0, "credit_card": 1, "home_improvement": 2,
	"other": 3, "major_purchase": 4, "small_business": 5, "car": 6,
	"medical": 7, "moving": 8, "vacation": 9, "house": 10, "wedding": 11,
	"renewable_energy": 12, "educational": 13,
}

func encodeGrade(grade string) int {
	if v, ok := gradeEncoding[grade]; ok {
		return v
	}
	return 1
}

func encodeEmpLength(empLength string) int {
	if v, ok := empLengthEncoding[empLength]; ok {
		return v
	}
	return 5
}

func encodeHomeOwnership(home string) int {
	if v, ok := homeOwnershipEncoding[home]; ok {
		return v
	}
	return 0
}

func encodePurpose(purpose string) int {
	if v, ok := purposeEncoding[purpose]; ok {
		return v
	}
	return 0
}

// Payment-history answers exactly as the application forms submit them.
const (
	PaymentAlwaysOnTime   = "Always on time (No missed payments)"
	PaymentOccasionalLate = "Occasional delays (1-2 late payments)"
	PaymentFrequentLate   = "Frequent delays (3+ late payments)"
)

const cardAmex = "American Express"

// cardRateAdjustment tweaks the quoted interest rate per card network;
// unknown networks stay neutral.
var cardRateAdjustment = map[string]float64{
	"Visa":             0,
	"Mastercard":       0,
	"American Express": -0.5,
	"Discover":         0.2,
}

// India-to-USA schema mapping tables. The approval model knows only the USA
// feature space, so every India form value is translated into its closest
// USA counterpart before scoring.

var indiaHistoryYears = map[string]float64{
	"New to credit (< 1 year)": 0.5,
	"1-3 years":                2,
	"3-5 years":                4,
	"5-7 years":                6,
	"7+ years":                 10,
}

var indiaCityHomeOwnership = map[string]string{
	"Metro (Mumbai, Delhi, Bangalore)":  "MORTGAGE",
	"Tier-1 (Pune, Hyderabad, Chennai)": "RENT",
	"Tier-2 (Jaipur, Lucknow, Kochi)":   "RENT",
	"Tier-3 (Smaller cities)":           "OWN",
}

var indiaEmploymentLength = map[string]string{
	"Salaried (MNC)":     "10+ years",
	"Salaried (Startup)": "3 years",
	"Self-employed":      "5 years",
	"Business Owner":     "10+ years",
	"Freelancer":         "2 years",
	"Student":            "< 1 year",
}

var indiaLoanPurpose = map[string]string{
	"Personal Loan":      "other",
	"Education Loan":     "educational",
	"Home Loan":          "house",
	"Car Loan":           "car",
	"Business Loan":      "small_business",
	"Credit Card":        "credit_card",
	"Debt Consolidation": "debt_consolidation",
}

// RuPay has no equivalent in the model's training data and is scored as Visa.
var indiaCardNetwork = map[string]string{
	"Visa":             "Visa",
	"Mastercard":       "Mastercard",
	"RuPay":            "Visa",
	"American Express": "American Express",
}

func mapIndiaHistoryYears(history string) float64 {
	if v, ok := indiaHistoryYears[history]; ok {
		return v
	}
	return 2
}

func mapIndiaHomeOwnership(cityTier string) string {
	if v, ok := indiaCityHomeOwnership[cityTier]; ok {
		return v
	}
	return "RENT"
}

func mapIndiaEmpLength(employmentType string) string {
	if v, ok := indiaEmploymentLength[employmentType]; ok {
		return v
	}
	return "5 years"
}

func mapIndiaPurpose(loanPurpose string) string {
	if v, ok := indiaLoanPurpose[loanPurpose]; ok {
		return v
	}
	return "other"
}

func mapIndiaCard(cardType string) string {
	if v, ok := indiaCardNetwork[cardType]; ok {
		return v
	}
	return "Visa"
}
