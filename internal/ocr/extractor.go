package ocr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/models"
)

// nativeTextConfidence is reported when a PDF carries its own text layer;
// extraction is then near-lossless.
const nativeTextConfidence = 0.95

// MethodTextLayer identifies native text-layer extraction in metadata; the
// OCR path reports the engine name instead.
const MethodTextLayer = "text_layer"

// Extraction is the text pulled from one document plus its provenance.
type Extraction struct {
	Text   string
	Pages  int
	Method string

	// Confidence reflects how trustworthy the raw text is: the native
	// constant for text layers, pooled token confidence for OCR. It is a
	// signal for record metadata, separate from the parser's own
	// completeness score.
	Confidence float64

	// RawTextHash fingerprints the extracted text for deduplication.
	RawTextHash string
}

// Extractor turns a PDF into parseable text. Native text layers are
// preferred; image-only documents are rasterized and fed to the configured
// OCR engine.
type Extractor struct {
	cfg    models.OCRConfig
	engine Engine
	pre    *Preprocessor
	log    zerolog.Logger
}

// NewExtractor wires an extractor. engine handles the scanned-document
// fallback and may be nil, in which case image-only PDFs fail with
// ErrEngineUnavailable.
func NewExtractor(cfg models.OCRConfig, engine Engine) *Extractor {
	e := &Extractor{
		cfg:    cfg,
		engine: engine,
		log:    logger.WithComponent("extractor"),
	}
	if cfg.Preprocess {
		e.pre = NewPreprocessor()
	}
	return e
}

// ExtractText pulls text out of the document at path. Both the text-layer
// and the OCR path can fail for unreadable files; callers are expected to
// convert such errors into zero-confidence records rather than abort.
func (e *Extractor) ExtractText(ctx context.Context, path string) (*Extraction, error) {
	text, pages, err := TextLayer(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("text layer unreadable, trying OCR")
		text, pages = "", 0
	}

	if !IsScanned(text) {
		e.log.Debug().Int("pages", pages).Int("chars", len(text)).Msg("native text layer found")
		return &Extraction{
			Text:        text,
			Pages:       pages,
			Method:      MethodTextLayer,
			Confidence:  nativeTextConfidence,
			RawTextHash: hashText(text),
		}, nil
	}

	return e.runOCR(ctx, path, pages)
}

func (e *Extractor) runOCR(ctx context.Context, path string, fallbackPages int) (*Extraction, error) {
	if e.engine == nil {
		return nil, NewExtractError("ExtractText", ErrEngineUnavailable, "no OCR engine configured")
	}

	images, total, err := RenderPages(path, e.cfg.MaxOCRPages, e.cfg.DPI)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		total = fallbackPages
	}
	if len(images) == 0 {
		return nil, NewExtractError("ExtractText", ErrNoText, "document has no pages")
	}

	var (
		pageTexts []string
		allTokens []float64
		pageConfs []float64
	)
	for i, img := range images {
		if e.pre != nil {
			img = e.pre.Enhance(img)
		}
		res, rerr := e.engine.Recognize(ctx, img)
		if rerr != nil {
			return nil, WrapExtractError("ExtractText", rerr, fmt.Sprintf("page %d", i+1))
		}
		pageTexts = append(pageTexts, res.Text)
		allTokens = append(allTokens, res.TokenConfidences...)
		pageConfs = append(pageConfs, res.Confidence)
	}

	text := strings.TrimSpace(strings.Join(pageTexts, "\n"))
	if text == "" {
		return nil, NewExtractError("ExtractText", ErrNoText, e.engine.Name())
	}

	// Token confidences pool across every processed page. Engines without
	// token scores fall back to averaging their flat page confidences.
	confidence := 0.0
	if len(allTokens) > 0 {
		confidence = AverageTokenConfidence(allTokens)
	} else {
		sum := 0.0
		for _, c := range pageConfs {
			sum += c
		}
		confidence = sum / float64(len(pageConfs))
	}

	e.log.Info().
		Str("engine", e.engine.Name()).
		Int("pages_rendered", len(images)).
		Int("pages_total", total).
		Float64("confidence", confidence).
		Msg("document recognized")

	return &Extraction{
		Text:        text,
		Pages:       total,
		Method:      e.engine.Name(),
		Confidence:  confidence,
		RawTextHash: hashText(text),
	}, nil
}

func hashText(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
