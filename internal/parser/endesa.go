package parser

import (
	"regexp"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var (
	reEndesaUsage  = regexp.MustCompile(`(?i)kWh facturados:?\s*([\d\.\,]+)\s*kWh`)
	reEndesaIssued = regexp.MustCompile(`(?i)Fecha emisi[óo]n:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reEndesaPeriod = regexp.MustCompile(`(?i)Periodo:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})\s*[-–]\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reEndesaAmount = regexp.MustCompile(`(?i)Total factura:?\s*([\d\.\,]+)\s*€`)
	reKgPerKWh     = regexp.MustCompile(`(?i)([\d\.\,]+)\s*kg\s*CO2\/kWh`)
)

// parseEndesa extracts an electricity record from an Endesa invoice. Endesa
// labels consumption "kWh facturados" and rarely prints an emission factor,
// so the factor counts toward confidence only when the invoice carries one.
func (p *InvoiceParser) parseEndesa(text string, meta models.Meta) models.NormalizedRecord {
	rec := models.NewRecord()
	rec.Supplier = supplierEndesa
	rec.Category = models.CategoryElectricity
	rec.Scope = 2
	rec.Meta = meta

	found := 0
	const totalFields = 5.0

	if v, ok := matchNumber(reEndesaUsage, text); ok {
		rec.UsageValue = v
		rec.UsageUnit = "kWh"
		found++
	}
	if d, ok := matchDate(reEndesaIssued, text); ok {
		rec.IssueDate = d
		found++
	}
	if start, end, ok := matchPeriod(reEndesaPeriod, text); ok {
		rec.PeriodStart, rec.PeriodEnd = start, end
		found++
	}
	if v, ok := matchNumber(reEndesaAmount, text); ok {
		rec.AmountTotal = v
		found++
	}
	if v, ok := matchNumber(reKgPerKWh, text); ok {
		rec.EmissionFactor = v
		found++
	} else {
		rec.EmissionFactor = models.Float(p.factors.ElectricityKgPerKWh)
	}

	computeCO2e(&rec)
	rec.Confidence = 0.5 + float64(found)/totalFields*0.5
	return rec
}
