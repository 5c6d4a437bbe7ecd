package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
)

// InvoiceParser extracts normalized emission records from free-form invoice
// text. Each recognized supplier has its own field extractor tuned to that
// supplier's invoice layout; everything else falls through to the generic
// extractor. Emission factors are injected so deployments can override the
// defaults per country or reporting year.
type InvoiceParser struct {
	factors models.FactorsConfig
	log     zerolog.Logger
}

func NewInvoiceParser(factors models.FactorsConfig) *InvoiceParser {
	return &InvoiceParser{
		factors: factors,
		log:     logger.WithComponent("invoice_parser"),
	}
}

// ParseText detects the supplier in text and routes to the matching field
// extractor. meta is attached to the returned record and may be extended
// with extraction diagnostics.
func (p *InvoiceParser) ParseText(text string, meta models.Meta) models.NormalizedRecord {
	supplier, _ := DetectSupplier(text)
	return p.ParseTextAs(text, supplier, meta)
}

// ParseTextAs routes text to the field extractor for an already detected
// supplier. An empty supplier selects the generic extractor.
func (p *InvoiceParser) ParseTextAs(text, supplier string, meta models.Meta) models.NormalizedRecord {
	if meta == nil {
		meta = models.Meta{}
	}

	var rec models.NormalizedRecord
	switch {
	case supplier == supplierIberdrola:
		rec = p.parseIberdrola(text, meta)
	case supplier == supplierEndesa:
		rec = p.parseEndesa(text, meta)
	case supplier == supplierNaturgy:
		rec = p.parseNaturgy(text, meta)
	case fuelSuppliers[supplier]:
		rec = p.parseFuel(text, supplier, meta)
	default:
		rec = p.parseGeneric(text, supplier, meta)
	}

	p.log.Debug().
		Str("supplier", rec.Supplier).
		Str("category", string(rec.Category)).
		Float64("confidence", rec.Confidence).
		Msg("parsed invoice text")
	return rec
}

// A matched field counts toward the confidence score even when its value does
// not survive normalization; the helpers below therefore report the match and
// the parsed value separately.

// matchString returns the first capture group of re in text, trimmed.
func matchString(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// matchNumber reports whether re matched and, when the captured group is a
// well-formed Spanish number, its value.
func matchNumber(re *regexp.Regexp, text string) (*float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	if v, ok := NormalizeNumber(m[1]); ok {
		return &v, true
	}
	return nil, true
}

// matchDate reports whether re matched and, when the captured group is a
// recognized date, its value.
func matchDate(re *regexp.Regexp, text string) (*time.Time, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	if d, ok := ParseDate(m[1]); ok {
		return &d, true
	}
	return nil, true
}

// matchPeriod extracts a billing period with two date capture groups.
func matchPeriod(re *regexp.Regexp, text string) (start, end *time.Time, matched bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil, nil, false
	}
	if d, ok := ParseDate(m[1]); ok {
		start = &d
	}
	if d, ok := ParseDate(m[2]); ok {
		end = &d
	}
	return start, end, true
}

// matchFirstNumber tries patterns in order and stops at the first match.
func matchFirstNumber(patterns []*regexp.Regexp, text string) (*float64, bool) {
	for _, re := range patterns {
		if v, ok := matchNumber(re, text); ok {
			return v, true
		}
	}
	return nil, false
}

// matchFirstString tries patterns in order and stops at the first match.
func matchFirstString(patterns []*regexp.Regexp, text string) (string, bool) {
	for _, re := range patterns {
		if s, ok := matchString(re, text); ok {
			return s, true
		}
	}
	return "", false
}

// matchFirstDate tries patterns in order and stops at the first match.
func matchFirstDate(patterns []*regexp.Regexp, text string) (*time.Time, bool) {
	for _, re := range patterns {
		if d, ok := matchDate(re, text); ok {
			return d, true
		}
	}
	return nil, false
}
