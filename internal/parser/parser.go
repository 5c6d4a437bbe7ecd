// Package parser turns heterogeneous invoice documents into normalized
// emission records: supplier detection, field extraction, Spanish number
// and date normalization, emission factor application and confidence
// scoring.
package parser

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
	"github.com/getluma/emissions-extraction-service/internal/ocr"
)

// TextExtractor pulls raw text out of PDF documents. Satisfied by
// *ocr.Extractor.
type TextExtractor interface {
	ExtractText(ctx context.Context, path string) (*ocr.Extraction, error)
}

// DocumentParser routes uploaded files to the text or tabular pipeline. It
// is stateless and safe for concurrent use; every call returns at least one
// record, with structural failures expressed as zero-confidence error
// records instead of Go errors.
type DocumentParser struct {
	invoice   *InvoiceParser
	tabular   *TabularParser
	extractor TextExtractor
	log       zerolog.Logger
}

// New builds a DocumentParser. extractor handles the PDF paths and may be
// nil when only tabular and txt input is expected.
func New(factors models.FactorsConfig, extractor TextExtractor) *DocumentParser {
	return &DocumentParser{
		invoice:   NewInvoiceParser(factors),
		tabular:   NewTabularParser(factors),
		extractor: extractor,
		log:       logger.WithComponent("document_parser"),
	}
}

// ParseDocument parses the file at path according to its declared source
// type: one record for PDF and txt, one per data row for tabular input.
func (p *DocumentParser) ParseDocument(ctx context.Context, path string, sourceType models.SourceType) []models.NormalizedRecord {
	switch sourceType {
	case models.SourcePDF:
		return []models.NormalizedRecord{p.parsePDF(ctx, path)}
	case models.SourceCSV:
		return p.tabular.ParseCSV(path)
	case models.SourceXLSX, models.SourceXLS:
		return p.tabular.ParseExcel(path)
	case models.SourceTxt:
		return []models.NormalizedRecord{p.parseTxt(path)}
	default:
		p.log.Warn().Str("path", path).Str("source_type", string(sourceType)).Msg("unsupported file type")
		return []models.NormalizedRecord{models.ErrorRecord("Unsupported file type")}
	}
}

func (p *DocumentParser) parsePDF(ctx context.Context, path string) models.NormalizedRecord {
	if p.extractor == nil {
		return models.ErrorRecord("PDF extraction is not configured")
	}

	ext, err := p.extractor.ExtractText(ctx, path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("pdf extraction failed")
		return models.ErrorRecord(err.Error())
	}

	meta := models.Meta{
		"pages":                 ext.Pages,
		"method":                ext.Method,
		"raw_text_hash":         ext.RawTextHash,
		"extraction_confidence": ext.Confidence,
	}

	supplier, detected := DetectSupplier(ext.Text)
	supplierResult := supplier
	if !detected {
		supplierResult = "Not detected"
	}

	rec := p.invoice.ParseTextAs(ext.Text, supplier, meta)
	rec.Meta["extraction_log"] = models.Meta{
		"ocr_text_length":  len(ext.Text),
		"ocr_text_preview": preview(ext.Text, 500),
		"patterns_tried":   []models.Meta{{"field": "supplier", "result": supplierResult}},
		"fields_found":     []string{},
		"fields_missing":   []string{},
	}
	return rec
}

// parseTxt treats the file content as already-extracted invoice text and
// applies the same supplier routing as the PDF path.
func (p *DocumentParser) parseTxt(path string) models.NormalizedRecord {
	content, err := os.ReadFile(path)
	if err != nil {
		p.log.Error().Err(err).Str("path", path).Msg("read txt")
		return models.ErrorRecord(err.Error())
	}

	meta := models.Meta{"pages": 1, "file_type": "txt"}
	return p.invoice.ParseText(string(content), meta)
}

// preview truncates text to the leading n characters for diagnostics.
func preview(text string, n int) string {
	if text == "" {
		return "No text extracted"
	}
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}
