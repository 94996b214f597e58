package agent

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"videoforge/internal/llm"
	"videoforge/internal/ports"
)

// Generator produces text from a prompt message. Satisfied by llm.Gateway.
type Generator interface {
	Generate(ctx context.Context, msg llm.Message) (string, error)
}

// SolutionAgent produces step-by-step solutions for question text,
// optionally grounded on an attached image or PDF.
type SolutionAgent struct {
	gen    Generator
	logger ports.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewSolutionAgent(gen Generator, logger ports.Logger) *SolutionAgent {
	return &SolutionAgent{
		gen:    gen,
		logger: logger.WithFields(map[string]interface{}{"agent": "solution"}),
		cache:  make(map[string]string),
	}
}

// Process generates a structured solution for the question. Results are
// cached by question text and attachment presence, so repeated requests
// for the same question skip the provider round trip.
func (a *SolutionAgent) Process(ctx context.Context, question string, image, pdf []byte) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("%w: empty question", ErrInvalidInput)
	}

	key := cacheKey(question, len(image) > 0, len(pdf) > 0)
	a.mu.RLock()
	cached, ok := a.cache[key]
	a.mu.RUnlock()
	if ok {
		a.logger.Info("Returning cached solution")
		return cached, nil
	}

	a.logger.Info("Solving question", "length", len(question))

	solution, err := a.gen.Generate(ctx, llm.Message{
		Text:  renderPrompt(solutionPrompt, promptData{Content: question}),
		Image: image,
		PDF:   pdf,
	})
	if err != nil {
		return "", err
	}

	if !validateSolutionFormat(solution) {
		a.logger.Error("Solution format validation failed", "length", len(solution))
		return "", &FormatValidationError{Kind: "solution", Reason: "missing step structure or too short"}
	}

	a.mu.Lock()
	a.cache[key] = solution
	a.mu.Unlock()

	return solution, nil
}

func cacheKey(question string, hasImage, hasPDF bool) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%t_%t", question, hasImage, hasPDF)))
	return hex.EncodeToString(sum[:])
}
