package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/getluma/emissions-extraction-service/internal/models"
	"github.com/getluma/emissions-extraction-service/internal/services"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse one invoice document into normalized emission records",
	Long: `Parse a single document and print the extracted records as JSON.

The source type is detected from the file extension and can be overridden
with --type for files arriving without a useful extension. Each record
carries its review status (processed or needs_review, per the configured
confidence threshold) and the validator's cross-check result.`,
	Example: `  # Parse a PDF invoice
  extract parse factura_iberdrola.pdf

  # Force the source type and pretty-print
  extract parse export.dat --type csv --pretty

  # Write the result envelope to a file
  extract parse gastos.xlsx -o records.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// recordResult pairs one extracted record with its downstream routing
// status and validation outcome.
type recordResult struct {
	models.NormalizedRecord
	Status     models.UploadStatus        `json:"status"`
	Validation *services.ValidationResult `json:"validation"`
}

// parseEnvelope is the JSON output of the parse command.
type parseEnvelope struct {
	FileID     string            `json:"file_id"`
	File       string            `json:"file"`
	SourceType models.SourceType `json:"source_type"`
	Duration   string            `json:"duration"`
	Records    []recordResult    `json:"records"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("type", "t", "", "source type: pdf, csv, xlsx, xls or txt (default: from extension)")
	parseCmd.Flags().StringP("output", "o", "", "output file path (default: stdout)")
	parseCmd.Flags().Bool("pretty", false, "indent the JSON output")
}

func runParse(cmd *cobra.Command, args []string) error {
	declaredType, _ := cmd.Flags().GetString("type")
	outputPath, _ := cmd.Flags().GetString("output")
	pretty, _ := cmd.Flags().GetBool("pretty")

	path := args[0]
	sourceType := models.SourceType(declaredType)
	if declaredType == "" {
		sourceType = models.DetectSourceType(path)
	}

	p, closer := newPipeline(cmd.Context())
	if closer != nil {
		defer closer.Close()
	}

	start := time.Now()
	records := p.ParseDocument(cmd.Context(), path, sourceType)
	envelope := parseEnvelope{
		FileID:     uuid.NewString(),
		File:       path,
		SourceType: sourceType,
		Duration:   time.Since(start).Round(time.Millisecond).String(),
		Records:    annotateRecords(records),
	}

	return writeJSON(envelope, outputPath, pretty)
}

// annotateRecords applies the review routing policy and the cross-field
// validator to every parsed record.
func annotateRecords(records []models.NormalizedRecord) []recordResult {
	validator := services.NewRecordValidator()

	results := make([]recordResult, 0, len(records))
	for _, rec := range records {
		results = append(results, recordResult{
			NormalizedRecord: rec,
			Status:           models.StatusForConfidence(rec.Confidence, cfg.Review.Threshold),
			Validation:       validator.Validate(&rec),
		})
	}
	return results
}

func writeJSON(v any, outputPath string, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0644)
}
