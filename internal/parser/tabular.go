package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
)

// Table is a sheet of string cells with a header row, as produced by the CSV
// and Excel readers. Sheet is empty for CSV input.
type Table struct {
	Headers []string
	Rows    [][]string
	Sheet   string
}

// columnTargets lists the record fields a table column can feed, each with
// its accepted header spellings in priority order. For every target the
// search stops at the first header that exists in the table, even when that
// row's cell is empty; a later synonym never shadows an earlier one.
var columnTargets = []struct {
	target   string
	synonyms []string
}{
	{"date", []string{"fecha", "fecha_factura", "posting_date", "date"}},
	{"supplier", []string{"proveedor", "vendor", "empresa", "supplier"}},
	{"category", []string{"categoria", "tipo_gasto", "naturaleza", "category"}},
	{"usage_value", []string{"consumo", "kwh", "m3", "litros", "l", "distancia_km", "km", "usage", "usage_value"}},
	{"usage_unit", []string{"unidad", "unidad_consumo", "uom", "unit", "usage_unit"}},
	{"amount_total", []string{"importe_total", "total", "importe", "amount", "amount_total"}},
	{"invoice_number", []string{"num_factura", "factura", "invoice", "invoice_number"}},
	{"scope", []string{"alcance", "scope"}},
}

// TabularParser maps spreadsheet-style expense exports onto normalized
// records, one record per data row. Column headers are matched against
// Spanish and English synonyms so exports from different ERP systems map
// without per-customer templates.
type TabularParser struct {
	factors models.FactorsConfig
	log     zerolog.Logger
}

func NewTabularParser(factors models.FactorsConfig) *TabularParser {
	return &TabularParser{
		factors: factors,
		log:     logger.WithComponent("tabular_parser"),
	}
}

// ParseTable converts every data row of tbl into a record. Rows where no
// column mapped are dropped; a table with no usable rows yields a single
// zero-confidence error record so callers always get at least one result.
func (p *TabularParser) ParseTable(tbl Table) []models.NormalizedRecord {
	if len(tbl.Rows) == 0 {
		return []models.NormalizedRecord{models.ErrorRecord("Empty file")}
	}

	headerIdx := make(map[string]int, len(tbl.Headers))
	headers := make([]string, len(tbl.Headers))
	for i, h := range tbl.Headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		headers[i] = norm
		if _, dup := headerIdx[norm]; !dup {
			headerIdx[norm] = i
		}
	}

	var records []models.NormalizedRecord
	for i, row := range tbl.Rows {
		rec, ok := p.parseRow(headers, headerIdx, row, tbl.Sheet, i)
		if ok {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		p.log.Warn().Str("sheet", tbl.Sheet).Int("rows", len(tbl.Rows)).Msg("no mappable rows in table")
		return []models.NormalizedRecord{models.ErrorRecord("No valid data found")}
	}
	return records
}

func (p *TabularParser) parseRow(headers []string, headerIdx map[string]int, row []string, sheet string, idx int) (models.NormalizedRecord, bool) {
	rec := models.NewRecord()
	if sheet != "" {
		// Spreadsheet row numbers are 1-based and include the header.
		rec.Meta = models.Meta{"sheet": sheet, "row": idx + 2}
	} else {
		rec.Meta = models.Meta{"row": idx + 1}
	}

	found := 0
	mappings := models.Meta{}
	var unmapped []models.Meta

	for _, ct := range columnTargets {
		mapped := false
		for _, syn := range ct.synonyms {
			col, present := headerIdx[syn]
			if !present {
				continue
			}
			cell := ""
			if col < len(row) {
				cell = strings.TrimSpace(row[col])
			}
			if cell != "" {
				mappings[ct.target] = models.Meta{"column": syn, "value": truncateCell(cell, 100)}
				applyCell(&rec, ct.target, cell)
				found++
				mapped = true
			}
			break
		}
		if !mapped {
			unmapped = append(unmapped, models.Meta{
				"field":            ct.target,
				"searched_columns": ct.synonyms,
				"status":           "not_found",
			})
		}
	}

	extractionLog := models.Meta{
		"columns_available": headers,
		"column_mappings":   mappings,
		"unmapped_fields":   unmapped,
	}

	// The category column is logged above but the category itself derives
	// from the usage unit, which also picks the default emission factor.
	if rec.UsageUnit != "" {
		unit := strings.ToLower(rec.UsageUnit)
		switch {
		case strings.Contains(unit, "kwh"):
			rec.Category = models.CategoryElectricity
			rec.Scope = 2
			rec.EmissionFactor = models.Float(p.factors.ElectricityKgPerKWh)
			extractionLog["category_detection"] = models.Meta{"method": "from_unit", "unit": unit, "category": "electricity"}
		case strings.Contains(unit, "m3"):
			rec.Category = models.CategoryNaturalGas
			rec.Scope = 1
			rec.EmissionFactor = models.Float(p.factors.GasKgPerM3Tabular)
			extractionLog["category_detection"] = models.Meta{"method": "from_unit", "unit": unit, "category": "gas"}
		case strings.Contains(unit, "l"), strings.Contains(unit, "litros"):
			rec.Category = models.CategoryFuel
			rec.Scope = 1
			rec.EmissionFactor = models.Float(p.factors.DieselKgPerL)
			extractionLog["category_detection"] = models.Meta{"method": "from_unit", "unit": unit, "category": "fuel"}
		case strings.Contains(unit, "km"), strings.Contains(unit, "tkm"):
			rec.Category = models.CategoryFreight
			rec.Scope = 3
			rec.EmissionFactor = models.Float(p.factors.RoadFreightKgPerTKm)
			extractionLog["category_detection"] = models.Meta{"method": "from_unit", "unit": unit, "category": "freight"}
		default:
			extractionLog["category_detection"] = models.Meta{"method": "from_unit", "unit": unit, "category": "unknown_unit"}
		}
	} else {
		extractionLog["category_detection"] = models.Meta{"method": "not_detected", "reason": "no_usage_unit_found"}
	}

	if computeCO2e(&rec) {
		extractionLog["emissions_calculation"] = models.Meta{
			"status":  "calculated",
			"formula": fmt.Sprintf("%g x %g", *rec.UsageValue, *rec.EmissionFactor),
			"result":  fmt.Sprintf("%.2f kg", *rec.CO2eKg),
		}
	} else {
		extractionLog["emissions_calculation"] = models.Meta{
			"status": "not_calculated",
			"reason": fmt.Sprintf("usage_value=%v, emission_factor=%v", floatValue(rec.UsageValue), floatValue(rec.EmissionFactor)),
		}
	}

	rec.Confidence = 0.3 + float64(found)/6*0.7
	if rec.Confidence > 1.0 {
		rec.Confidence = 1.0
	}
	rec.Meta["source"] = "csv/xlsx"
	rec.Meta["fields_found"] = found
	rec.Meta["extraction_log"] = extractionLog

	return rec, found > 0
}

// applyCell writes one mapped cell onto the record. Cells that fail to parse
// still count as mapped; only the parsed value is withheld.
func applyCell(rec *models.NormalizedRecord, target, cell string) {
	switch target {
	case "date":
		if d, ok := ParseDate(cell); ok {
			rec.IssueDate = &d
		}
	case "supplier":
		rec.Supplier = cell
	case "usage_value":
		if v, ok := NormalizeNumber(cell); ok {
			rec.UsageValue = &v
		}
	case "usage_unit":
		rec.UsageUnit = cell
	case "amount_total":
		if v, ok := NormalizeNumber(cell); ok {
			rec.AmountTotal = &v
		}
	case "invoice_number":
		rec.InvoiceNumber = cell
	case "scope":
		if n, err := strconv.Atoi(cell); err == nil {
			rec.Scope = n
		}
	}
}

func truncateCell(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
