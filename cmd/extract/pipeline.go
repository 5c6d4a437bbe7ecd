package main

import (
	"context"
	"io"

	"github.com/getluma/emissions-extraction-service/internal/logger"
	"github.com/getluma/emissions-extraction-service/internal/ocr"
	"github.com/getluma/emissions-extraction-service/internal/parser"
)

// newPipeline wires the OCR engine, text extractor and document parser from
// the loaded configuration. An engine that cannot be constructed (typically
// a missing API key) degrades to text-layer-only extraction instead of
// failing commands that may never touch a scanned document. The returned
// closer releases engine resources and may be nil.
func newPipeline(ctx context.Context) (*parser.DocumentParser, io.Closer) {
	log := logger.WithComponent("pipeline")

	var (
		engine ocr.Engine
		closer io.Closer
		err    error
	)
	switch cfg.OCR.Engine {
	case "gemini":
		g, gerr := ocr.NewGeminiEngine(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, cfg.OCR.AIConfidence)
		if gerr == nil {
			engine, closer = g, g
		}
		err = gerr
	case "openai":
		engine, err = ocr.NewOpenAIEngine(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.BaseURL, cfg.AI.OpenAI.Model, cfg.OCR.AIConfidence)
	default:
		engine = ocr.NewTesseractEngine(cfg.OCR.TesseractPath, cfg.OCR.Language)
	}
	if err != nil {
		log.Warn().Err(err).Str("engine", cfg.OCR.Engine).
			Msg("OCR engine unavailable, scanned documents will fail extraction")
		engine = nil
	}

	extractor := ocr.NewExtractor(cfg.OCR, engine)
	return parser.New(cfg.Factors, extractor), closer
}
