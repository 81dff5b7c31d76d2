package models

// Countries with dedicated base rates and credit-score scales. Any other
// value falls back to the neutral base rate.
const (
	CountryUSA   = "USA"
	CountryIndia = "India"
)

// ApplicantRequest is the wire form of a credit application. Required fields
// are pointers so an absent value can be told apart from a zero one: income
// of 0 is a valid (coerced) input, a missing income is an error.
type ApplicantRequest struct {
	ID              string   `json:"id,omitempty"`
	Country         *string  `json:"country"`
	CreditScore     *int     `json:"credit_score"`
	Income          *float64 `json:"income"`
	LoanAmount      *float64 `json:"loan_amount"`
	EmploymentYears int      `json:"employment_years"`
	ExistingDebt    float64  `json:"existing_debt"`
	Email           string   `json:"email,omitempty"`
}

// Applicant validates the request and returns the normalized applicant.
// The first absent required field is reported as a MissingFieldError.
func (r *ApplicantRequest) Applicant() (*Applicant, error) {
	if r.Country == nil {
		return nil, &MissingFieldError{Field: "country"}
	}
	if r.CreditScore == nil {
		return nil, &MissingFieldError{Field: "credit_score"}
	}
	if r.Income == nil {
		return nil, &MissingFieldError{Field: "income"}
	}
	if r.LoanAmount == nil {
		return nil, &MissingFieldError{Field: "loan_amount"}
	}

	id := r.ID
	if id == "" {
		id = "unknown"
	}

	return &Applicant{
		ID:              id,
		Country:         *r.Country,
		CreditScore:     *r.CreditScore,
		Income:          *r.Income,
		LoanAmount:      *r.LoanAmount,
		EmploymentYears: r.EmploymentYears,
		ExistingDebt:    r.ExistingDebt,
	}, nil
}

// Applicant represents a validated credit application.
type Applicant struct {
	ID              string  `json:"id"`
	Country         string  `json:"country"`
	CreditScore     int     `json:"credit_score"`
	Income          float64 `json:"income"`
	LoanAmount      float64 `json:"loan_amount"`
	EmploymentYears int     `json:"employment_years"`
	ExistingDebt    float64 `json:"existing_debt"`
}
