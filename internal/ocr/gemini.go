package ocr

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/getluma/emissions-extraction-service/internal/logger"
)

// visionPrompt asks the AI engines for a faithful transcription rather than
// an interpretation, so the downstream field extractors see the same label
// text a native PDF would carry.
const visionPrompt = `Transcribe all text visible in this invoice image exactly as printed.
Preserve line breaks, field labels, numbers and units. Do not summarize,
translate or add commentary. Output only the transcribed text.`

// GeminiEngine transcribes page images with Google Gemini vision. The model
// exposes no token-level scores, so every page reports the flat configured
// confidence.
type GeminiEngine struct {
	client     *genai.Client
	model      *genai.GenerativeModel
	confidence float64
	log        zerolog.Logger
}

// NewGeminiEngine creates the engine and its API client. modelName defaults
// to gemini-1.5-flash, which is fast and cheap enough for page
// transcription.
func NewGeminiEngine(ctx context.Context, apiKey, modelName string, confidence float64) (*GeminiEngine, error) {
	if apiKey == "" {
		return nil, NewExtractError("NewGeminiEngine", ErrMissingAPIKey, "gemini")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, WrapExtractError("NewGeminiEngine", err, "creating gemini client")
	}

	return &GeminiEngine{
		client:     client,
		model:      client.GenerativeModel(modelName),
		confidence: confidence,
		log:        logger.WithComponent("gemini_ocr"),
	}, nil
}

func (g *GeminiEngine) Name() string { return "gemini" }

// Close releases the underlying API client.
func (g *GeminiEngine) Close() error {
	return g.client.Close()
}

// Recognize sends the page image to Gemini and collects the text parts of
// the first candidate.
func (g *GeminiEngine) Recognize(ctx context.Context, image []byte) (*Result, error) {
	parts := []genai.Part{
		genai.ImageData("png", image),
		genai.Text(visionPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, WrapExtractError("Recognize", err, "gemini generate content")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, NewExtractError("Recognize", ErrEmptyResponse, "gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	transcript := strings.TrimSpace(text.String())
	if transcript == "" {
		return nil, NewExtractError("Recognize", ErrEmptyResponse, "gemini")
	}

	g.log.Debug().Int("chars", len(transcript)).Msg("page transcribed")
	return &Result{Text: transcript, Confidence: g.confidence}, nil
}
