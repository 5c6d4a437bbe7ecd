package models

import (
	"path/filepath"
	"strings"
	"time"
)

// Category classifies what kind of consumption an invoice documents.
// It determines the applicable default emission factor and the implied
// GHG Protocol scope.
type Category string

const (
	CategoryElectricity Category = "electricity"
	CategoryNaturalGas  Category = "natural_gas"
	CategoryFuel        Category = "fuel"
	CategoryFreight     Category = "freight"
	CategoryWater       Category = "water"
	CategoryOther       Category = "other"
)

// DefaultScope returns the GHG scope implied by the category:
// 1 = on-site combustion, 2 = purchased energy, 3 = value chain.
func (c Category) DefaultScope() int {
	switch c {
	case CategoryElectricity:
		return 2
	case CategoryNaturalGas, CategoryFuel:
		return 1
	case CategoryFreight:
		return 3
	default:
		return 0
	}
}

// UploadStatus tracks an upload through the processing pipeline.
type UploadStatus string

const (
	StatusPending     UploadStatus = "pending"
	StatusProcessing  UploadStatus = "processing"
	StatusProcessed   UploadStatus = "processed"
	StatusFailed      UploadStatus = "failed"
	StatusNeedsReview UploadStatus = "needs_review"
)

// DefaultReviewThreshold is the confidence level at or above which a record
// is accepted without manual review.
const DefaultReviewThreshold = 0.6

// StatusForConfidence maps an extraction confidence to the post-processing
// status. The threshold is owned by the caller, not by the parsers.
func StatusForConfidence(confidence, threshold float64) UploadStatus {
	if confidence >= threshold {
		return StatusProcessed
	}
	return StatusNeedsReview
}

// Meta carries unstructured extraction diagnostics. Consumers surface it
// verbatim and must not parse it programmatically.
type Meta map[string]any

// NormalizedRecord is the canonical output of every parsing path: one PDF
// invoice or one CSV/Excel row becomes exactly one record. Optional numeric
// fields are nil when the source document did not yield them.
type NormalizedRecord struct {
	Supplier      string     `json:"supplier,omitempty"`
	Category      Category   `json:"category,omitempty"`
	Scope         int        `json:"scope,omitempty"` // 1-3, 0 when undetermined
	PeriodStart   *time.Time `json:"period_start,omitempty"`
	PeriodEnd     *time.Time `json:"period_end,omitempty"`
	IssueDate     *time.Time `json:"issue_date,omitempty"`
	InvoiceNumber string     `json:"invoice_number,omitempty"`

	UsageValue *float64 `json:"usage_value,omitempty"`
	UsageUnit  string   `json:"usage_unit,omitempty"` // kWh, m3, L, km

	AmountTotal *float64 `json:"amount_total,omitempty"`
	Currency    string   `json:"currency"`
	VATRate     *float64 `json:"vat_rate,omitempty"`

	// EmissionFactor is kg CO2e per unit of UsageUnit, either stated in the
	// document or defaulted from the per-category configuration.
	EmissionFactor *float64 `json:"emission_factor,omitempty"`

	// CO2eKg is always derived as UsageValue * EmissionFactor; it is never
	// set independently of its inputs.
	CO2eKg *float64 `json:"co2e_kg,omitempty"`

	Confidence float64 `json:"confidence"`
	Meta       Meta    `json:"meta,omitempty"`
}

// NewRecord returns a record with the currency default applied.
func NewRecord() NormalizedRecord {
	return NormalizedRecord{Currency: "EUR", Meta: Meta{}}
}

// ErrorRecord is the zero-confidence record returned for structural
// failures (unreadable file, unsupported type). Parsing never returns an
// empty result set; this record is the floor.
func ErrorRecord(msg string) NormalizedRecord {
	return NormalizedRecord{
		Currency:   "EUR",
		Confidence: 0.0,
		Meta:       Meta{"error": msg},
	}
}

// Float is a convenience for building optional numeric fields.
func Float(v float64) *float64 { return &v }

// SourceType identifies how a file's content should be parsed.
type SourceType string

const (
	SourcePDF   SourceType = "pdf"
	SourceCSV   SourceType = "csv"
	SourceXLSX  SourceType = "xlsx"
	SourceXLS   SourceType = "xls"
	SourceTxt   SourceType = "txt"
	SourceOther SourceType = ""
)

// DetectSourceType maps a file name to its parse source type by extension.
// Extensions outside the supported set (images included) return SourceOther;
// the orchestrator turns those into a zero-confidence error record.
func DetectSourceType(filename string) SourceType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return SourcePDF
	case ".csv":
		return SourceCSV
	case ".xlsx":
		return SourceXLSX
	case ".xls":
		return SourceXLS
	case ".txt":
		return SourceTxt
	default:
		return SourceOther
	}
}
