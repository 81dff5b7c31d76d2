package models

// FeatureVector is the 17-field input schema of the external approval model,
// matching the encoding the USA model was trained on.
type FeatureVector struct {
	LoanAmnt           float64 `json:"loan_amnt"`
	IntRate            float64 `json:"int_rate"`
	Installment        float64 `json:"installment"`
	Grade              int     `json:"grade"`
	EmpLength          int     `json:"emp_length"`
	HomeOwnership      int     `json:"home_ownership"`
	AnnualInc          float64 `json:"annual_inc"`
	VerificationStatus int     `json:"verification_status"`
	Purpose            int     `json:"purpose"`
	DTI                float64 `json:"dti"`
	Delinq2Yrs         int     `json:"delinq_2yrs"`
	InqLast6Mths       int     `json:"inq_last_6mths"`
	OpenAcc            int     `json:"open_acc"`
	PubRec             int     `json:"pub_rec"`
	RevolBal           float64 `json:"revol_bal"`
	RevolUtil          float64 `json:"revol_util"`
	TotalAcc           int     `json:"total_acc"`
}

// USAApprovalRequest carries the USA application form fields.
type USAApprovalRequest struct {
	LoanAmount         float64 `json:"loan_amount"`
	InterestRate       float64 `json:"interest_rate"`
	Grade              string  `json:"grade"`
	EmploymentLength   string  `json:"employment_length"`
	HomeOwnership      string  `json:"home_ownership"`
	AnnualIncome       float64 `json:"annual_income"`
	Purpose            string  `json:"purpose"`
	DTI                float64 `json:"dti"`
	CreditInquiries    int     `json:"credit_inquiries"`
	OpenAccounts       int     `json:"open_accounts"`
	RevolvingBalance   float64 `json:"revolving_balance"`
	RevolvingUtil      float64 `json:"revolving_utilization"`
	TotalAccounts      int     `json:"total_accounts"`
	CardType           string  `json:"card_type"`
	CreditHistoryYears float64 `json:"credit_history_years"`
	PaymentHistory     string  `json:"payment_history"`
}

// IndiaApprovalRequest carries the India application form fields, which are
// mapped onto the USA schema before the model is invoked.
type IndiaApprovalRequest struct {
	LoanAmountINR   float64 `json:"loan_amount_inr"`
	CIBILScore      int     `json:"cibil_score"`
	CityTier        string  `json:"city_tier"`
	AnnualIncomeINR float64 `json:"annual_income_inr"`
	EmploymentType  string  `json:"employment_type"`
	LoanPurpose     string  `json:"loan_purpose"`
	ExistingLoans   int     `json:"existing_loans"`
	PANVerified     bool    `json:"pan_verified"`
	AadhaarVerified bool    `json:"aadhaar_verified"`
	CardType        string  `json:"card_type"`
	CreditHistory   string  `json:"credit_history"`
	PaymentHistory  string  `json:"payment_history"`
}

// ApprovalResult is the outcome of an approval assessment.
type ApprovalResult struct {
	Approved           bool    `json:"approved"`
	Decision           string  `json:"decision"`
	DefaultProbability float64 `json:"default_probability"`
	Probability        string  `json:"probability"`
	RiskLevel          string  `json:"risk_level"`
	CreditLimit        string  `json:"credit_limit"`
	RecommendedAPR     string  `json:"recommended_apr"`
	Message            string  `json:"message"`
}
