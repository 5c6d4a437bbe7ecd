package parser

import (
	"regexp"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var (
	reFuelLitres   = regexp.MustCompile(`(?i)([\d\.\,]+)\s*(Litros|L)\b`)
	reFuelDiesel   = regexp.MustCompile(`(?i)gas[óo]leo|diesel|di[ée]sel`)
	reFuelGasoline = regexp.MustCompile(`(?i)gasolina|gasoline|95|98`)
	reFuelIssued   = regexp.MustCompile(`(?i)Fecha:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reFuelAmount   = regexp.MustCompile(`(?i)Total.*?:?\s*([\d\.\,]+)\s*€`)
)

// parseFuel extracts a fuel card record for Repsol, Cepsa, Galp, Shell and
// BP. The fuel type decides the emission factor; diesel wording wins when an
// invoice mentions both, and without a recognized type no factor is assigned
// and no emissions are computed. A successful CO2e computation counts as the
// fifth confidence field.
func (p *InvoiceParser) parseFuel(text, supplier string, meta models.Meta) models.NormalizedRecord {
	rec := models.NewRecord()
	rec.Supplier = supplier
	rec.Category = models.CategoryFuel
	rec.Scope = 1
	rec.Meta = meta

	found := 0
	const totalFields = 5.0

	if v, ok := matchNumber(reFuelLitres, text); ok {
		rec.UsageValue = v
		rec.UsageUnit = "L"
		found++
	}
	switch {
	case reFuelDiesel.MatchString(text):
		rec.EmissionFactor = models.Float(p.factors.DieselKgPerL)
		found++
	case reFuelGasoline.MatchString(text):
		rec.EmissionFactor = models.Float(p.factors.GasolineKgPerL)
		found++
	}
	if d, ok := matchDate(reFuelIssued, text); ok {
		rec.IssueDate = d
		found++
	}
	if v, ok := matchNumber(reFuelAmount, text); ok {
		rec.AmountTotal = v
		found++
	}
	if computeCO2e(&rec) {
		found++
	}

	rec.Confidence = 0.5 + float64(found)/totalFields*0.5
	return rec
}
