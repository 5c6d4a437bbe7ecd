package parser

import (
	"bytes"
	"encoding/csv"
	"os"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV reads a CSV export and maps its rows onto normalized records.
// Read failures surface as a single zero-confidence error record instead of
// an error so batch callers can keep going. The reader is deliberately
// permissive: Excel-style BOMs are stripped and ragged or loosely quoted
// rows are accepted.
func (p *TabularParser) ParseCSV(path string) []models.NormalizedRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("read csv")
		return []models.NormalizedRecord{models.ErrorRecord(err.Error())}
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("parse csv")
		return []models.NormalizedRecord{models.ErrorRecord(err.Error())}
	}
	if len(rows) == 0 {
		return []models.NormalizedRecord{models.ErrorRecord("Empty file")}
	}

	return p.ParseTable(Table{Headers: rows[0], Rows: rows[1:]})
}
