package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getluma/emissions-extraction-service/internal/models"
	"github.com/getluma/emissions-extraction-service/internal/services"
)

func validRecord() *models.NormalizedRecord {
	start := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	issued := time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC)

	rec := models.NewRecord()
	rec.Supplier = "Iberdrola"
	rec.Category = models.CategoryElectricity
	rec.Scope = 2
	rec.PeriodStart = &start
	rec.PeriodEnd = &end
	rec.IssueDate = &issued
	rec.UsageValue = models.Float(1250.5)
	rec.UsageUnit = "kWh"
	rec.AmountTotal = models.Float(190.22)
	rec.VATRate = models.Float(0.21)
	rec.EmissionFactor = models.Float(0.231)
	rec.CO2eKg = models.Float(1250.5 * 0.231)
	rec.Confidence = 0.92
	return &rec
}

func TestValidateCleanRecord(t *testing.T) {
	v := services.NewRecordValidator()
	result := v.Validate(validRecord())

	assert.True(t, result.Valid)
	assert.False(t, result.NeedsReview)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.InDelta(t, 288.87, result.Computed.ExpectedCO2eKg, 0.01)
	assert.InDelta(t, 0.231, result.Computed.ImpliedFactor, 1e-4)
}

func TestValidateCO2eMismatch(t *testing.T) {
	rec := validRecord()
	rec.CO2eKg = models.Float(999)

	result := services.NewRecordValidator().Validate(rec)

	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "co2e_mismatch", result.Errors[0].Code)
	assert.InDelta(t, 288.87, result.Errors[0].Expected, 0.01)
}

func TestValidateFreightRecordWithoutFactor(t *testing.T) {
	// The freight estimate carries CO2e but no per-unit factor; that must
	// not trip the consistency check.
	rec := models.NewRecord()
	rec.Category = models.CategoryFreight
	rec.Scope = 3
	rec.UsageValue = models.Float(350)
	rec.UsageUnit = "km"
	rec.CO2eKg = models.Float(350 * 1200 * 0.00012)
	rec.Confidence = 0.6

	result := services.NewRecordValidator().Validate(&rec)

	assert.True(t, result.Valid)
	assert.NotZero(t, result.Computed.ImpliedFactor)
}

func TestValidateBoundsAndQuantities(t *testing.T) {
	rec := validRecord()
	rec.Confidence = 1.4
	rec.Scope = 7
	rec.UsageValue = models.Float(-5)
	rec.CO2eKg = nil
	rec.EmissionFactor = nil

	result := services.NewRecordValidator().Validate(rec)

	require.False(t, result.Valid)
	codes := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	assert.Contains(t, codes, "confidence_out_of_range")
	assert.Contains(t, codes, "scope_out_of_range")
	assert.Contains(t, codes, "negative_value")
}

func TestValidatePeriodInvertedWarns(t *testing.T) {
	rec := validRecord()
	rec.PeriodStart, rec.PeriodEnd = rec.PeriodEnd, rec.PeriodStart

	result := services.NewRecordValidator().Validate(rec)

	// Sources do not enforce period ordering, so this stays a warning.
	assert.True(t, result.Valid)
	assert.True(t, result.NeedsReview)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "period_inverted", result.Warnings[0].Code)
}

func TestValidateVAT(t *testing.T) {
	t.Run("unusual rate warns", func(t *testing.T) {
		rec := validRecord()
		rec.VATRate = models.Float(0.15)

		result := services.NewRecordValidator().Validate(rec)
		assert.True(t, result.Valid)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, "vat_unusual_rate", result.Warnings[0].Code)
	})

	t.Run("rate above one errors", func(t *testing.T) {
		rec := validRecord()
		rec.VATRate = models.Float(21)

		result := services.NewRecordValidator().Validate(rec)
		assert.False(t, result.Valid)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, "vat_out_of_range", result.Errors[0].Code)
	})
}

func TestValidateCurrencyAndScopeCoherence(t *testing.T) {
	rec := validRecord()
	rec.Currency = "USD"
	rec.Scope = 1 // electricity should be scope 2

	result := services.NewRecordValidator().Validate(rec)

	assert.True(t, result.Valid)
	codes := make([]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "non_eur_currency")
	assert.Contains(t, codes, "scope_category_mismatch")
}

func TestValidateErrorRecordPassesBoundsOnly(t *testing.T) {
	rec := models.ErrorRecord("unreadable")
	result := services.NewRecordValidator().Validate(&rec)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}
