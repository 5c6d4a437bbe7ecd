package parser

import (
	"regexp"
	"strconv"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var (
	reIberdrolaInvoice = regexp.MustCompile(`(?i)Factura\s*n[ºo]:?\s*([A-Z0-9\-\/\.]+)`)
	reIberdrolaIssued  = regexp.MustCompile(`(?i)Fecha de emisi[óo]n:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reIberdrolaPeriod  = regexp.MustCompile(`(?i)Periodo de facturaci[óo]n:?\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})\s*[-–]\s*(\d{2}[\/\-]\d{2}[\/\-]\d{4})`)
	reIberdrolaUsage   = regexp.MustCompile(`(?i)Consumo(?:\s*total)?:?\s*([\d\.\,]+)\s*(kWh)`)
	reIberdrolaFactor  = regexp.MustCompile(`(?i)Factor de emisi[óo]n:?\s*([\d\.\,]+)\s*kg\s*CO2\/kWh`)
	reVATRate          = regexp.MustCompile(`(?i)IVA\s*(\d{1,2})%`)

	// "Importe total (IVA 21%): 2.500,45 €" on current layouts; older
	// invoices label the line just "Total".
	iberdrolaAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Importe total.*?:\s*([\d\.\,]+)\s*€`),
		regexp.MustCompile(`(?i)Total:?\s*([\d\.\,]+)\s*€`),
	}
)

// parseIberdrola extracts an electricity record from an Iberdrola invoice.
// Six labelled fields drive the confidence score; the VAT rate is captured
// when present but does not count toward it, and a missing emission factor
// falls back to the configured grid mix without counting either.
func (p *InvoiceParser) parseIberdrola(text string, meta models.Meta) models.NormalizedRecord {
	rec := models.NewRecord()
	rec.Supplier = supplierIberdrola
	rec.Category = models.CategoryElectricity
	rec.Scope = 2
	rec.Meta = meta

	found := 0
	const totalFields = 6.0

	if num, ok := matchString(reIberdrolaInvoice, text); ok {
		rec.InvoiceNumber = num
		found++
	}
	if d, ok := matchDate(reIberdrolaIssued, text); ok {
		rec.IssueDate = d
		found++
	}
	if start, end, ok := matchPeriod(reIberdrolaPeriod, text); ok {
		rec.PeriodStart, rec.PeriodEnd = start, end
		found++
	}
	if v, ok := matchNumber(reIberdrolaUsage, text); ok {
		rec.UsageValue = v
		rec.UsageUnit = "kWh"
		found++
	}
	if v, ok := matchNumber(reIberdrolaFactor, text); ok {
		rec.EmissionFactor = v
		found++
	} else {
		rec.EmissionFactor = models.Float(p.factors.ElectricityKgPerKWh)
	}
	if v, ok := matchFirstNumber(iberdrolaAmountPatterns, text); ok {
		rec.AmountTotal = v
		found++
	}
	if pct, ok := matchString(reVATRate, text); ok {
		if n, err := strconv.Atoi(pct); err == nil {
			rec.VATRate = models.Float(float64(n) / 100)
		}
	}

	computeCO2e(&rec)
	rec.Confidence = 0.5 + float64(found)/totalFields*0.5
	return rec
}
