package services

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field    string  `json:"field"`
	Code     string  `json:"code"`
	Expected float64 `json:"expected,omitempty"`
	Actual   float64 `json:"actual,omitempty"`
	Message  string  `json:"message,omitempty"`
}

// ValidationWarning represents a non-critical issue.
type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ComputedValues holds the values the validator derived while checking.
type ComputedValues struct {
	ExpectedCO2eKg float64 `json:"expected_co2e_kg,omitempty"`
	ImpliedFactor  float64 `json:"implied_factor,omitempty"`
}

// ValidationResult is the outcome of validating one record.
type ValidationResult struct {
	Valid       bool                `json:"valid"`
	NeedsReview bool                `json:"needs_review"`
	Errors      []ValidationError   `json:"errors"`
	Warnings    []ValidationWarning `json:"warnings"`
	Computed    ComputedValues      `json:"computed"`
}

// Spanish VAT rates: general, reduced, super-reduced and exempt.
var knownVATRates = []float64{0.21, 0.10, 0.04, 0}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// RecordValidator cross-checks extracted emission records before they are
// handed to storage. Extraction misses are already priced into the
// confidence score, so the validator only flags values that contradict each
// other or fall outside physical bounds.
type RecordValidator struct {
	tolerance float64 // relative tolerance (0.05 = 5%)
}

// NewRecordValidator creates a validator with the default 5% tolerance.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{tolerance: 0.05}
}

// Validate performs all cross-checks on an extracted record.
func (v *RecordValidator) Validate(rec *models.NormalizedRecord) *ValidationResult {
	result := &ValidationResult{
		Valid:       true,
		NeedsReview: false,
		Errors:      []ValidationError{},
		Warnings:    []ValidationWarning{},
	}

	// 1. Confidence and scope bounds
	v.validateBounds(rec, result)

	// 2. Negative quantities
	v.validateQuantities(rec, result)

	// 3. Billing period and issue date ordering
	v.validateDates(rec, result)

	// 4. CO2e vs usage x factor
	v.validateEmissions(rec, result)

	// 5. VAT rate plausibility
	v.validateVAT(rec, result)

	// 6. Currency shape
	v.validateCurrency(rec, result)

	// 7. Category and scope coherence
	v.validateCategory(rec, result)

	result.Valid = len(result.Errors) == 0
	result.NeedsReview = len(result.Warnings) > 0

	return result
}

func (v *RecordValidator) validateBounds(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.Confidence < 0 || rec.Confidence > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "confidence",
			Code:    "confidence_out_of_range",
			Actual:  round2(rec.Confidence),
			Message: "confidence must be between 0 and 1",
		})
	}

	if rec.Scope < 0 || rec.Scope > 3 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "scope",
			Code:    "scope_out_of_range",
			Actual:  float64(rec.Scope),
			Message: "scope must be 1, 2 or 3, or 0 when undetermined",
		})
	}
}

func (v *RecordValidator) validateQuantities(rec *models.NormalizedRecord, result *ValidationResult) {
	check := func(field string, value *float64) {
		if value != nil && *value < 0 {
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Code:    "negative_value",
				Actual:  round2(*value),
				Message: field + " cannot be negative",
			})
		}
	}
	check("usage_value", rec.UsageValue)
	check("amount_total", rec.AmountTotal)
	check("co2e_kg", rec.CO2eKg)
	check("emission_factor", rec.EmissionFactor)
}

func (v *RecordValidator) validateDates(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.PeriodStart != nil && rec.PeriodEnd != nil && rec.PeriodStart.After(*rec.PeriodEnd) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "period_start",
			Code:    "period_inverted",
			Message: "billing period starts after it ends",
		})
	}

	if rec.IssueDate != nil && rec.IssueDate.After(time.Now().AddDate(0, 0, 1)) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "issue_date",
			Code:    "issue_date_in_future",
			Message: "issue date lies in the future",
		})
	}
}

// validateEmissions recomputes CO2e from usage and factor. The freight
// estimate carries CO2e without a factor, so the check only fires when all
// three values are present.
func (v *RecordValidator) validateEmissions(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.UsageValue != nil && rec.CO2eKg != nil && *rec.UsageValue > 0 {
		result.Computed.ImpliedFactor = round4(*rec.CO2eKg / *rec.UsageValue)
	}

	if rec.UsageValue == nil || rec.EmissionFactor == nil || rec.CO2eKg == nil {
		return
	}

	expected := *rec.UsageValue * *rec.EmissionFactor
	result.Computed.ExpectedCO2eKg = round2(expected)

	diff := math.Abs(*rec.CO2eKg - expected)
	toleranceAmount := math.Abs(expected) * v.tolerance

	if diff > toleranceAmount {
		result.Errors = append(result.Errors, ValidationError{
			Field:    "co2e_kg",
			Code:     "co2e_mismatch",
			Expected: round2(expected),
			Actual:   round2(*rec.CO2eKg),
			Message:  "co2e_kg does not match usage_value x emission_factor",
		})
	}
}

func (v *RecordValidator) validateVAT(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.VATRate == nil {
		return
	}

	rate := *rec.VATRate
	if rate < 0 || rate >= 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "vat_rate",
			Code:    "vat_out_of_range",
			Actual:  round2(rate),
			Message: "vat_rate must be a fraction between 0 and 1",
		})
		return
	}

	for _, known := range knownVATRates {
		if math.Abs(rate-known) < 0.005 {
			return
		}
	}
	result.Warnings = append(result.Warnings, ValidationWarning{
		Field:   "vat_rate",
		Code:    "vat_unusual_rate",
		Message: fmt.Sprintf("vat_rate %.2f is not a standard Spanish rate", rate),
	})
}

func (v *RecordValidator) validateCurrency(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.Currency == "" {
		return
	}

	if !currencyPattern.MatchString(rec.Currency) {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "currency",
			Code:    "currency_format",
			Message: "currency should be a three-letter ISO code",
		})
		return
	}
	if rec.Currency != "EUR" {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "currency",
			Code:    "non_eur_currency",
			Message: "unexpected currency for a Spanish invoice: " + rec.Currency,
		})
	}
}

// validateCategory warns when the stated scope disagrees with the usual
// scope for the category, e.g. electricity reported as scope 1.
func (v *RecordValidator) validateCategory(rec *models.NormalizedRecord, result *ValidationResult) {
	if rec.Category == "" {
		return
	}

	expected := rec.Category.DefaultScope()
	if expected != 0 && rec.Scope != 0 && rec.Scope != expected {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "scope",
			Code:    "scope_category_mismatch",
			Message: fmt.Sprintf("scope %d is unusual for category %s (expected %d)", rec.Scope, rec.Category, expected),
		})
	}
}

// round2 rounds to 2 decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// round4 rounds to 4 decimal places, enough for emission factors.
func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
