package llm

import (
	"context"
	"fmt"
)

// Message carries one generation request to a backend. Text is always
// present; Image and PDF hold raw bytes when the request includes them.
type Message struct {
	Text  string
	Image []byte
	PDF   []byte
}

// Backend generates text from a message against a single provider.
type Backend interface {
	Generate(ctx context.Context, msg Message) (string, error)
	Name() string
}

// GenerationError wraps a backend failure with the provider that produced it.
type GenerationError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm generation failed (provider=%s, attempts=%d): %v", e.Provider, e.Attempts, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
