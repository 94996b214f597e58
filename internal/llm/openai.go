package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// openaiBackend generates content through the OpenAI chat completions API.
type openaiBackend struct {
	client *openai.Client
	model  string
	cfg    *config.LLMConfig
	logger ports.Logger
}

func newOpenAIBackend(cfg *config.LLMConfig, logger ports.Logger) (*openaiBackend, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not set")
	}
	return &openaiBackend{
		client: openai.NewClient(cfg.OpenAIAPIKey),
		model:  cfg.OpenAIModel,
		cfg:    cfg,
		logger: logger.WithFields(map[string]interface{}{"backend": "openai"}),
	}, nil
}

func (b *openaiBackend) Name() string { return "openai" }

func (b *openaiBackend) Generate(ctx context.Context, msg Message) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: b.buildParts(msg),
			},
		},
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	result := resp.Choices[0].Message.Content
	b.logger.Info("Generated content", "length", len(result))
	return result, nil
}

func (b *openaiBackend) buildParts(msg Message) []openai.ChatMessagePart {
	var parts []openai.ChatMessagePart

	if msg.Text != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: msg.Text,
		})
	}

	if len(msg.Image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(msg.Image)
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + encoded,
			},
		})
	}

	// Chat models take no PDF input, so it is skipped with a warning.
	if len(msg.PDF) > 0 {
		b.logger.Warn("PDF input is not supported by the OpenAI chat model and will be ignored")
	}

	return parts
}
