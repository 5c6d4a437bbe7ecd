package ocr

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/getluma/emissions-extraction-service/internal/logger"
)

// OpenAIEngine transcribes page images with an OpenAI vision model. Like
// Gemini, the API exposes no token-level scores, so pages report the flat
// configured confidence.
type OpenAIEngine struct {
	client     *openai.Client
	model      string
	confidence float64
	log        zerolog.Logger
}

// NewOpenAIEngine creates the engine. baseURL is optional and supports
// Azure-style or proxy endpoints; model defaults to gpt-4o.
func NewOpenAIEngine(apiKey, baseURL, model string, confidence float64) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, NewExtractError("NewOpenAIEngine", ErrMissingAPIKey, "openai")
	}
	if model == "" {
		model = openai.GPT4o
	}

	var client *openai.Client
	if baseURL != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		client = openai.NewClientWithConfig(cfg)
	} else {
		client = openai.NewClient(apiKey)
	}

	return &OpenAIEngine{
		client:     client,
		model:      model,
		confidence: confidence,
		log:        logger.WithComponent("openai_ocr"),
	}, nil
}

func (o *OpenAIEngine) Name() string { return "openai" }

// Recognize sends the page image as a data URL and returns the model's
// transcription.
func (o *OpenAIEngine) Recognize(ctx context.Context, image []byte) (*Result, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: visionPrompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    dataURL,
								Detail: openai.ImageURLDetailHigh,
							},
						},
					},
				},
			},
			MaxTokens: 4096,
		},
	)
	if err != nil {
		return nil, WrapExtractError("Recognize", err, "openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, NewExtractError("Recognize", ErrEmptyResponse, "openai")
	}

	transcript := strings.TrimSpace(resp.Choices[0].Message.Content)
	if transcript == "" {
		return nil, NewExtractError("Recognize", ErrEmptyResponse, "openai")
	}

	o.log.Debug().Int("chars", len(transcript)).Msg("page transcribed")
	return &Result{Text: transcript, Confidence: o.confidence}, nil
}
