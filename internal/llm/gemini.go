package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// geminiBackend generates content through the Google Gemini API.
type geminiBackend struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger ports.Logger
}

func newGeminiBackend(ctx context.Context, cfg *config.LLMConfig, logger ports.Logger) (*geminiBackend, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("Gemini API key is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(cfg.Temperature)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(int32(cfg.MaxTokens))

	return &geminiBackend{
		client: client,
		model:  model,
		logger: logger.WithFields(map[string]interface{}{"backend": "gemini"}),
	}, nil
}

func (b *geminiBackend) Name() string { return "gemini" }

func (b *geminiBackend) Close() error {
	return b.client.Close()
}

func (b *geminiBackend) Generate(ctx context.Context, msg Message) (string, error) {
	parts := buildGeminiParts(msg)
	if len(parts) == 0 {
		return "", fmt.Errorf("message has no content")
	}

	resp, err := b.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	result := collectText(resp)
	if result == "" {
		return "", fmt.Errorf("content generation returned no text")
	}

	b.logger.Info("Generated content", "length", len(result))
	return result, nil
}

func buildGeminiParts(msg Message) []genai.Part {
	var parts []genai.Part

	if msg.Text != "" {
		parts = append(parts, genai.Text(msg.Text))
	}
	if len(msg.Image) > 0 {
		parts = append(parts, genai.ImageData("jpeg", msg.Image))
	}
	if len(msg.PDF) > 0 {
		parts = append(parts, genai.Blob{MIMEType: "application/pdf", Data: msg.PDF})
	}

	return parts
}

func collectText(resp *genai.GenerateContentResponse) string {
	var result string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				result += string(text)
			}
		}
	}
	return result
}
