package agent

import (
	"context"
	"fmt"
	"strings"

	"videoforge/internal/llm"
	"videoforge/internal/ports"
)

// TopicAgent produces lecture-style explanations for a topic title.
type TopicAgent struct {
	gen    Generator
	logger ports.Logger
}

func NewTopicAgent(gen Generator, logger ports.Logger) *TopicAgent {
	return &TopicAgent{
		gen:    gen,
		logger: logger.WithFields(map[string]interface{}{"agent": "topic"}),
	}
}

// Process generates a structured explanation for the topic.
func (a *TopicAgent) Process(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		return "", fmt.Errorf("%w: empty topic", ErrInvalidInput)
	}

	a.logger.Info("Explaining topic", "topic", topic)

	explanation, err := a.gen.Generate(ctx, llm.Message{
		Text: renderPrompt(topicPrompt, promptData{Content: topic}),
	})
	if err != nil {
		return "", err
	}

	if !validateTopicContent(explanation) {
		a.logger.Error("Topic content validation failed", "length", len(explanation))
		return "", &FormatValidationError{Kind: "topic", Reason: "missing educational structure or too short"}
	}

	return explanation, nil
}
