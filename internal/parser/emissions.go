package parser

import (
	"github.com/shopspring/decimal"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

// computeCO2e derives CO2eKg as UsageValue x EmissionFactor. It reports
// whether a value was computed: both inputs must be present and CO2eKg must
// not already be set (the freight estimate writes it directly). The
// multiplication runs through decimal so the derived mass is exact for the
// factors we handle.
func computeCO2e(rec *models.NormalizedRecord) bool {
	if rec.CO2eKg != nil || rec.UsageValue == nil || rec.EmissionFactor == nil {
		return false
	}

	co2e := decimal.NewFromFloat(*rec.UsageValue).
		Mul(decimal.NewFromFloat(*rec.EmissionFactor)).
		InexactFloat64()
	rec.CO2eKg = &co2e
	return true
}

// mulFloat multiplies two floats through decimal; used for the m3→kWh
// conversion and the freight distance×weight estimate.
func mulFloat(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).InexactFloat64()
}

// floatValue unwraps an optional float for diagnostics output.
func floatValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
