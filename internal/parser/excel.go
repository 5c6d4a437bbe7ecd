package parser

import (
	"github.com/xuri/excelize/v2"

	"github.com/getluma/emissions-extraction-service/internal/models"
)

// ParseExcel reads every sheet of a workbook and maps all data rows onto
// normalized records. A sheet that cannot be read contributes an error
// record without aborting the remaining sheets.
func (p *TabularParser) ParseExcel(path string) []models.NormalizedRecord {
	f, err := excelize.OpenFile(path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("open workbook")
		return []models.NormalizedRecord{models.ErrorRecord(err.Error())}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.log.Warn().Err(cerr).Str("path", path).Msg("close workbook")
		}
	}()

	var all []models.NormalizedRecord
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			p.log.Error().Err(err).Str("sheet", sheet).Msg("read sheet")
			all = append(all, models.ErrorRecord(err.Error()))
			continue
		}
		if len(rows) == 0 {
			all = append(all, models.ErrorRecord("Empty file"))
			continue
		}
		all = append(all, p.ParseTable(Table{Headers: rows[0], Rows: rows[1:], Sheet: sheet})...)
	}

	if len(all) == 0 {
		return []models.NormalizedRecord{models.ErrorRecord("No data found")}
	}
	return all
}
