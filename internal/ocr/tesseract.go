package ocr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
)

// TesseractEngine shells out to the tesseract binary. The TSV output format
// carries a confidence score per recognized word, which the engine pools
// into the page confidence.
type TesseractEngine struct {
	binary   string
	language string
	log      zerolog.Logger
}

// NewTesseractEngine builds an engine for the given binary and language
// pack. Spanish invoices want the "spa" pack; recognition still works
// without it but accented characters degrade.
func NewTesseractEngine(binary, language string) *TesseractEngine {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "spa"
	}
	return &TesseractEngine{
		binary:   binary,
		language: language,
		log:      logger.WithComponent("tesseract"),
	}
}

func (t *TesseractEngine) Name() string { return "tesseract" }

// Available reports whether the tesseract binary can be found.
func (t *TesseractEngine) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// Recognize writes the page image to a temp file and runs tesseract in TSV
// mode, reconstructing the text and collecting per-word confidences.
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if !t.Available() {
		return nil, NewExtractError("Recognize", ErrEngineUnavailable, t.binary+" not found in PATH")
	}

	in, err := os.CreateTemp("", "ocr-page-*.png")
	if err != nil {
		return nil, WrapExtractError("Recognize", err, "create temp image")
	}
	defer os.Remove(in.Name())

	if _, err := in.Write(image); err != nil {
		in.Close()
		return nil, WrapExtractError("Recognize", err, "write temp image")
	}
	if err := in.Close(); err != nil {
		return nil, WrapExtractError("Recognize", err, "close temp image")
	}

	cmd := exec.CommandContext(ctx, t.binary, in.Name(), "stdout", "-l", t.language, "tsv")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewExtractError("Recognize", err, strings.TrimSpace(stderr.String()))
	}

	text, tokens := parseTSV(stdout.String())
	result := &Result{
		Text:             text,
		TokenConfidences: tokens,
		Confidence:       AverageTokenConfidence(tokens),
	}

	t.log.Debug().
		Int("tokens", len(tokens)).
		Float64("confidence", result.Confidence).
		Msg("page recognized")
	return result, nil
}

// Column layout of tesseract TSV output. Word rows are level 5; structural
// rows (page, block, paragraph, line) carry -1 confidence and no text.
const (
	tsvColLevel = 0
	tsvColConf  = 10
	tsvColText  = 11
	tsvColCount = 12
)

// parseTSV reconstructs reading-order text and per-word confidences from
// tesseract TSV output. Words on the same line are joined by spaces and
// lines are separated by newlines, mirroring the plain-text output while
// keeping the confidence column.
func parseTSV(out string) (string, []float64) {
	var (
		text     strings.Builder
		tokens   []float64
		lastLine string
	)

	for i, row := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(row) == "" {
			continue
		}
		cols := strings.Split(row, "\t")
		if len(cols) < tsvColCount || cols[tsvColLevel] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[tsvColConf], 64)
		if err != nil {
			continue
		}
		word := strings.TrimSpace(cols[tsvColText])
		if word == "" {
			continue
		}

		// page:block:paragraph:line identifies the text line.
		lineKey := strings.Join(cols[1:5], ":")
		switch {
		case lastLine == "":
		case lineKey == lastLine:
			text.WriteString(" ")
		default:
			text.WriteString("\n")
		}
		text.WriteString(word)
		lastLine = lineKey

		tokens = append(tokens, conf)
	}

	return text.String(), tokens
}
