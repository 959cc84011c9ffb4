package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"loan-assessment-workers/internal/currency"
	"loan-assessment-workers/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("employment", func(fl validator.FieldLevel) bool {
			_, ok := ParseEmployment(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
			return currency.IsSupported(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return ValidatePhone(fl.Field().String())
		})
		validate = v
	})
	return validate
}

var tagCodes = map[string]string{
	"required":      "REQUIRED_FIELD_MISSING",
	"gt":            "MINIMUM_VIOLATION",
	"gte":           "MINIMUM_VIOLATION",
	"min":           "MIN_LENGTH_VIOLATION",
	"lte":           "MAXIMUM_VIOLATION",
	"max":           "MAX_LENGTH_VIOLATION",
	"email":         "INVALID_EMAIL",
	"phone":         "INVALID_PHONE",
	"employment":    "INVALID_EMPLOYMENT_STATUS",
	"currency_code": "UNSUPPORTED_CURRENCY",
}

// ValidateStruct runs the `validate` tags on v and reports violations by
// their JSON path (personalInfo.income, financialInfo.existingLoanDetails[0].amount).
func ValidateStruct(v interface{}) (*ValidationResult, error) {
	err := structValidator().Struct(v)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("struct validation failed: %w", err)
	}

	result := &ValidationResult{}
	for _, fe := range fieldErrs {
		result.Errors = append(result.Errors, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
			Code:    tagCode(fe.Tag()),
		})
	}
	return result, nil
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func tagCode(tag string) string {
	if code, ok := tagCodes[tag]; ok {
		return code
	}
	return "INVALID_VALUE"
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "gt":
		return fmt.Sprintf("value must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be <= %s", fe.Param())
	case "min":
		return fmt.Sprintf("value must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("value must be at most %s characters", fe.Param())
	case "email":
		return "invalid email address"
	case "phone":
		return "invalid phone number"
	case "employment":
		return fmt.Sprintf("employment status %q is not one of full-time, part-time, self-employed, unemployed", fe.Value())
	case "currency_code":
		return fmt.Sprintf("currency %q is not supported", fe.Value())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// ParseEmployment maps free-form employment labels ("Full Time",
// "full_time", "SelfEmployed") onto the canonical statuses.
func ParseEmployment(raw string) (models.EmploymentStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)

	switch key {
	case "fulltime":
		return models.EmploymentFullTime, true
	case "parttime":
		return models.EmploymentPartTime, true
	case "selfemployed":
		return models.EmploymentSelfEmployed, true
	case "unemployed":
		return models.EmploymentUnemployed, true
	}
	return models.EmploymentStatus(raw), false
}

// NormalizeApplication rewrites the employment status and currency code of
// app into their canonical forms. Unknown values are left untouched.
func NormalizeApplication(app *models.LoanApplication) {
	if status, ok := ParseEmployment(string(app.PersonalInfo.EmploymentStatus)); ok {
		app.PersonalInfo.EmploymentStatus = status
	}
	if c, ok := currency.Lookup(app.LoanDetails.Currency); ok {
		app.LoanDetails.Currency = c.Code
	}
	app.PersonalInfo.Email = strings.TrimSpace(app.PersonalInfo.Email)
	app.PersonalInfo.Phone = strings.TrimSpace(app.PersonalInfo.Phone)
}
