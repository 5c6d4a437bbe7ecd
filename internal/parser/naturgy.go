package parser

import (
	"regexp"
	"strings"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var (
	reNaturgyUsage  = regexp.MustCompile(`(?i)Consumo.*?:?\s*([\d\.\,]+)\s*(m3|kWh)`)
	reNaturgyPCS    = regexp.MustCompile(`(?i)PCS.*?([\d\.\,]+)\s*kWh/m3`)
	reNaturgyIssued = regexp.MustCompile(`(?i)Fecha.*?emisi[óo]n:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reNaturgyPeriod = regexp.MustCompile(`(?i)Periodo.*?:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})\s*[-–]\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reNaturgyAmount = regexp.MustCompile(`(?i)Total.*?:?\s*([\d\.\,]+)\s*€`)
)

// parseNaturgy extracts a natural gas record from a Naturgy invoice. Gas
// consumption billed in m3 is converted to kWh, preferring the invoice's own
// PCS calorific value over the configured average, so usage is always
// reported in kWh regardless of how the meter was read.
func (p *InvoiceParser) parseNaturgy(text string, meta models.Meta) models.NormalizedRecord {
	rec := models.NewRecord()
	rec.Supplier = supplierNaturgy
	rec.Category = models.CategoryNaturalGas
	rec.Scope = 1
	rec.Meta = meta

	found := 0
	const totalFields = 5.0

	if m := reNaturgyUsage.FindStringSubmatch(text); m != nil {
		value, okNum := NormalizeNumber(m[1])
		if okNum {
			if strings.EqualFold(m[2], "m3") {
				if pcs, ok := matchNumber(reNaturgyPCS, text); ok && pcs != nil {
					rec.UsageValue = models.Float(mulFloat(value, *pcs))
				} else {
					rec.UsageValue = models.Float(mulFloat(value, p.factors.GasM3ToKWh))
				}
			} else {
				rec.UsageValue = models.Float(value)
			}
		}
		rec.UsageUnit = "kWh"
		found++
	}
	if v, ok := matchNumber(reKgPerKWh, text); ok {
		rec.EmissionFactor = v
		found++
	} else {
		rec.EmissionFactor = models.Float(p.factors.NaturalGasKgPerKWh)
	}
	if d, ok := matchDate(reNaturgyIssued, text); ok {
		rec.IssueDate = d
		found++
	}
	if start, end, ok := matchPeriod(reNaturgyPeriod, text); ok {
		rec.PeriodStart, rec.PeriodEnd = start, end
		found++
	}
	if v, ok := matchNumber(reNaturgyAmount, text); ok {
		rec.AmountTotal = v
		found++
	}

	computeCO2e(&rec)
	rec.Confidence = 0.5 + float64(found)/totalFields*0.5
	return rec
}
