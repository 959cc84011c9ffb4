package models

type EmploymentStatus string

const (
	EmploymentFullTime     EmploymentStatus = "full-time"
	EmploymentPartTime     EmploymentStatus = "part-time"
	EmploymentSelfEmployed EmploymentStatus = "self-employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
)

type LoanApplication struct {
	PersonalInfo  PersonalInfo  `json:"personalInfo" validate:"required"`
	LoanDetails   LoanDetails   `json:"loanDetails" validate:"required"`
	FinancialInfo FinancialInfo `json:"financialInfo" validate:"required"`
}

type PersonalInfo struct {
	FullName         string           `json:"fullName" validate:"required,min=2,max=100"`
	Age              int              `json:"age" validate:"gte=18,lte=120"`
	EmploymentStatus EmploymentStatus `json:"employment" validate:"required,employment"`
	AnnualIncome     float64          `json:"income" validate:"gte=0"`
	YearsExperience  int              `json:"experience" validate:"gte=0"`
	Email            string           `json:"email,omitempty" validate:"omitempty,email"`
	Phone            string           `json:"phone,omitempty" validate:"omitempty,phone"`
}

type LoanDetails struct {
	Amount    float64 `json:"amount" validate:"gt=0"`
	Purpose   string  `json:"purpose" validate:"max=200"`
	TermYears int     `json:"term" validate:"gte=1,lte=40"`
	Currency  string  `json:"currency" validate:"required,currency_code"`
}

type FinancialInfo struct {
	CreditScore         int            `json:"creditScore" validate:"gte=300,lte=850"`
	ExistingLoans       int            `json:"existingLoans" validate:"gte=0"`
	ExistingLoanDetails []ExistingLoan `json:"existingLoanDetails" validate:"dive"`
	Collateral          string         `json:"collateral"`
}

type ExistingLoan struct {
	Type   string  `json:"type" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// CollateralValue is the nominal collateral value recorded with an application.
func (f FinancialInfo) CollateralValue() float64 {
	if f.Collateral == "none" {
		return 0
	}
	return 50000
}
