package parser

import (
	"fmt"
	"regexp"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var (
	genericInvoicePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Invoice\s*Number:?\s*([A-Z0-9\-\/\.]+)`),
		regexp.MustCompile(`(?i)N[ºo]\s*Factura:?\s*([A-Z0-9\-\/\.]+)`),
		regexp.MustCompile(`(?i)Factura:?\s*([A-Z0-9\-\/\.]+)`),
	}
	genericDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Date:?\s*(\d{1,2}[\s\/\-]\w+[\s\/\-]\d{4})`),
		regexp.MustCompile(`(?i)Fecha:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`),
		regexp.MustCompile(`(\d{2}[\/\-]\d{2}[\/\-]\d{4})`),
	}
	reGenericPeriod = regexp.MustCompile(`(?i)Per[ií]odo:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})\s*[-–]\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)

	// Category sniffing, checked in this order. The first keyword family
	// that appears in the text decides the category.
	reSniffElectricity = regexp.MustCompile(`(?i)electric|kWh|energ[ií]a`)
	reSniffGas         = regexp.MustCompile(`(?i)gas|m³|m3`)
	reSniffFuel        = regexp.MustCompile(`(?i)diesel|gasolina|combustible|litros?|L\b`)
	reSniffFreight     = regexp.MustCompile(`(?i)transport|freight|env[ií]o|distancia|km`)
	reGenericDiesel    = regexp.MustCompile(`(?i)diesel`)

	genericElectricityUsage = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*kWh`),
		regexp.MustCompile(`(?i)Consumo.*?:?\s*([\d\.\,]+)\s*kWh`),
		regexp.MustCompile(`(?i)Energy\s*Consumption:?\s*([\d\.\,]+)\s*kWh`),
	}
	genericGasUsage = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*m[³3]`),
		regexp.MustCompile(`(?i)Consumo.*?:?\s*([\d\.\,]+)\s*m[³3]`),
		regexp.MustCompile(`(?i)Volume:?\s*([\d\.\,]+)\s*m[³3]`),
	}
	genericFuelUsage = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*(Litros|L)\b`),
		regexp.MustCompile(`(?i)Volume:?\s*([\d\.\,]+)\s*L`),
		regexp.MustCompile(`(?i)Cantidad:?\s*([\d\.\,]+)\s*Litros`),
	}
	genericDistancePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*km`),
		regexp.MustCompile(`(?i)Distance:?\s*([\d\.\,]+)\s*km`),
		regexp.MustCompile(`(?i)Distancia:?\s*([\d\.\,]+)\s*km`),
	}
	genericWeightPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*kg`),
		regexp.MustCompile(`(?i)Weight:?\s*([\d\.\,]+)\s*kg`),
		regexp.MustCompile(`(?i)Peso:?\s*([\d\.\,]+)\s*kg`),
	}
	genericAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Total:?\s*([\d\.\,]+)\s*EUR`),
		regexp.MustCompile(`(?i)Importe:?\s*([\d\.\,]+)\s*€`),
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*EUR`),
		regexp.MustCompile(`(?i)([\d\.\,]+)\s*€`),
	}
)

// parseGeneric handles invoices from suppliers without a dedicated
// extractor, including unrecognized ones. It sniffs the expense category
// from keywords, credits each of up to eight extracted fields on top of a
// 0.3 base confidence and tops out at 0.9, and records every extraction
// attempt in the record's meta so reviewers can see what was tried.
func (p *InvoiceParser) parseGeneric(text, supplier string, meta models.Meta) models.NormalizedRecord {
	rec := models.NewRecord()
	rec.Supplier = supplier
	rec.Meta = meta
	rec.Confidence = 0.3

	found := 0
	attempts := make([]models.Meta, 0, 8)

	if num, ok := matchFirstString(genericInvoicePatterns, text); ok {
		rec.InvoiceNumber = num
		found++
		attempts = append(attempts, models.Meta{"field": "invoice_number", "status": "found", "value": num})
	} else {
		attempts = append(attempts, models.Meta{"field": "invoice_number", "status": "missing", "patterns_tried": len(genericInvoicePatterns)})
	}

	if d, ok := matchFirstDate(genericDatePatterns, text); ok {
		rec.IssueDate = d
		found++
		value := "unparsed"
		if d != nil {
			value = d.Format("2006-01-02")
		}
		attempts = append(attempts, models.Meta{"field": "date", "status": "found", "value": value})
	}

	if start, end, ok := matchPeriod(reGenericPeriod, text); ok {
		rec.PeriodStart, rec.PeriodEnd = start, end
		found++
	}

	switch {
	case reSniffElectricity.MatchString(text):
		rec.Category = models.CategoryElectricity
		rec.Scope = 2
		attempts = append(attempts, models.Meta{"field": "category", "status": "detected", "value": "electricity"})
		if v, ok := matchFirstNumber(genericElectricityUsage, text); ok {
			rec.UsageValue = v
			rec.UsageUnit = "kWh"
			rec.EmissionFactor = models.Float(p.factors.ElectricityKgPerKWh)
			found++
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "found", "value": floatValue(v)})
		} else {
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "missing", "patterns_tried": len(genericElectricityUsage)})
		}

	case reSniffGas.MatchString(text):
		rec.Category = models.CategoryNaturalGas
		rec.Scope = 1
		attempts = append(attempts, models.Meta{"field": "category", "status": "detected", "value": "gas"})
		if v, ok := matchFirstNumber(genericGasUsage, text); ok {
			rec.UsageValue = v
			rec.UsageUnit = "m3"
			rec.EmissionFactor = models.Float(p.factors.GasKgPerM3)
			found++
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "found", "value": floatValue(v)})
		} else {
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "missing", "patterns_tried": len(genericGasUsage)})
		}

	case reSniffFuel.MatchString(text):
		rec.Category = models.CategoryFuel
		rec.Scope = 1
		attempts = append(attempts, models.Meta{"field": "category", "status": "detected", "value": "fuel"})
		if v, ok := matchFirstNumber(genericFuelUsage, text); ok {
			rec.UsageValue = v
			rec.UsageUnit = "L"
			if reGenericDiesel.MatchString(text) {
				rec.EmissionFactor = models.Float(p.factors.DieselKgPerL)
			} else {
				rec.EmissionFactor = models.Float(p.factors.GasolineKgPerL)
			}
			found++
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "found", "value": floatValue(v)})
		} else {
			attempts = append(attempts, models.Meta{"field": "usage_value", "status": "missing", "patterns_tried": len(genericFuelUsage)})
		}

	case reSniffFreight.MatchString(text):
		rec.Category = models.CategoryFreight
		rec.Scope = 3
		attempts = append(attempts, models.Meta{"field": "category", "status": "detected", "value": "freight"})

		dist, distMatched := matchFirstNumber(genericDistancePatterns, text)
		if distMatched {
			attempts = append(attempts, models.Meta{"field": "distance", "status": "found", "value": floatValue(dist)})
		} else {
			attempts = append(attempts, models.Meta{"field": "distance", "status": "missing", "patterns_tried": len(genericDistancePatterns)})
		}
		wt, wtMatched := matchFirstNumber(genericWeightPatterns, text)
		if wtMatched {
			attempts = append(attempts, models.Meta{"field": "weight", "status": "found", "value": floatValue(wt)})
		} else {
			attempts = append(attempts, models.Meta{"field": "weight", "status": "missing", "patterns_tried": len(genericWeightPatterns)})
		}

		if dist != nil && wt != nil {
			rec.UsageValue = dist
			rec.UsageUnit = "km"
			// Flat per kg-km estimate until mode-specific factors land.
			co2e := mulFloat(mulFloat(*dist, *wt), p.factors.FreightKgPerKgKm)
			rec.CO2eKg = &co2e
			found++
			attempts = append(attempts, models.Meta{
				"field":   "emissions",
				"status":  "calculated",
				"value":   fmt.Sprintf("%.2f kg", co2e),
				"formula": fmt.Sprintf("%g km x %g kg x %g", *dist, *wt, p.factors.FreightKgPerKgKm),
			})
		}

	default:
		attempts = append(attempts, models.Meta{
			"field":             "category",
			"status":            "not_detected",
			"keywords_searched": []string{"electric", "gas", "fuel", "freight"},
		})
	}

	if v, ok := matchFirstNumber(genericAmountPatterns, text); ok {
		rec.AmountTotal = v
		rec.Currency = "EUR"
		found++
		attempts = append(attempts, models.Meta{"field": "amount_total", "status": "found", "value": floatValue(v)})
	} else {
		attempts = append(attempts, models.Meta{"field": "amount_total", "status": "missing", "patterns_tried": len(genericAmountPatterns)})
	}

	if computeCO2e(&rec) {
		found++
		attempts = append(attempts, models.Meta{
			"field":   "emissions",
			"status":  "calculated",
			"value":   fmt.Sprintf("%.2f kg", *rec.CO2eKg),
			"formula": fmt.Sprintf("%g %s x %g", *rec.UsageValue, rec.UsageUnit, *rec.EmissionFactor),
		})
	} else if rec.CO2eKg == nil {
		attempts = append(attempts, models.Meta{
			"field":  "emissions",
			"status": "not_calculated",
			"reason": fmt.Sprintf("missing_usage_value=%t, missing_factor=%t", rec.UsageValue == nil, rec.EmissionFactor == nil),
		})
	}

	rec.Confidence = 0.3 + float64(found)/8*0.6
	rec.Meta["extraction_attempts"] = attempts
	rec.Meta["fields_found_count"] = found
	return rec
}
