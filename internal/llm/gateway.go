package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"videoforge/internal/config"
	"videoforge/internal/ports"
)

// Gateway routes generation requests to the configured provider and
// retries transient failures with exponential backoff.
type Gateway struct {
	backends map[string]Backend
	provider string
	retry    *config.RetryConfig
	maxTries int
	logger   ports.Logger
	metrics  ports.Metrics
}

// NewGateway constructs backends for every provider that has credentials
// configured. The configured provider must be among them.
func NewGateway(ctx context.Context, cfg *config.Config, logger ports.Logger, metrics ports.Metrics) (*Gateway, error) {
	backends := make(map[string]Backend)

	if cfg.LLM.GeminiAPIKey != "" {
		gemini, err := newGeminiBackend(ctx, &cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		backends["gemini"] = gemini
	}
	if cfg.LLM.OpenAIAPIKey != "" {
		oai, err := newOpenAIBackend(&cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		backends["openai"] = oai
	}

	if _, ok := backends[cfg.LLM.Provider]; !ok {
		return nil, fmt.Errorf("unsupported or unconfigured LLM provider: %q", cfg.LLM.Provider)
	}

	return &Gateway{
		backends: backends,
		provider: cfg.LLM.Provider,
		retry:    &cfg.Retry,
		maxTries: cfg.LLM.MaxRetries,
		logger:   logger,
		metrics:  metrics,
	}, nil
}

// NewGatewayWithBackends wires explicit backends, used by tests.
func NewGatewayWithBackends(backends map[string]Backend, provider string, retry *config.RetryConfig, maxTries int, logger ports.Logger, metrics ports.Metrics) *Gateway {
	return &Gateway{
		backends: backends,
		provider: provider,
		retry:    retry,
		maxTries: maxTries,
		logger:   logger,
		metrics:  metrics,
	}
}

// Generate sends the message to the active provider. Any error is retried
// up to the configured attempt count, backing off exponentially between
// tries. Context cancellation stops the loop immediately.
func (g *Gateway) Generate(ctx context.Context, msg Message) (string, error) {
	backend, ok := g.backends[g.provider]
	if !ok {
		return "", &GenerationError{Provider: g.provider, Err: fmt.Errorf("provider not configured")}
	}

	g.logger.Info("Routing request to LLM provider", "provider", g.provider)
	g.metrics.IncrementCounter("llm.generate.attempts", map[string]string{"provider": g.provider})

	var lastErr error
	for attempt := 0; attempt < g.maxTries; attempt++ {
		start := time.Now()
		result, err := backend.Generate(ctx, msg)
		if err == nil {
			g.metrics.IncrementCounter("llm.generate.success", map[string]string{"provider": g.provider})
			g.metrics.RecordHistogram("llm.generate.duration_ms", float64(time.Since(start).Milliseconds()),
				map[string]string{"provider": g.provider})
			return result, nil
		}

		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		g.logger.Warn("Generation attempt failed", "provider", g.provider, "attempt", attempt+1, "error", err)
		g.metrics.IncrementCounter("llm.generate.errors", map[string]string{"provider": g.provider})

		// Don't sleep after last attempt
		if attempt < g.maxTries-1 {
			select {
			case <-ctx.Done():
				return "", &GenerationError{Provider: g.provider, Attempts: attempt + 1, Err: ctx.Err()}
			case <-time.After(g.calculateBackoff(attempt)):
			}
		}
	}

	g.metrics.IncrementCounter("llm.generate.exhausted", map[string]string{"provider": g.provider})
	return "", &GenerationError{Provider: g.provider, Attempts: g.maxTries, Err: lastErr}
}

// Close releases backend resources that hold connections.
func (g *Gateway) Close() error {
	var firstErr error
	for _, backend := range g.backends {
		if closer, ok := backend.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (g *Gateway) calculateBackoff(attempt int) time.Duration {
	backoff := float64(g.retry.InitialBackoff) * math.Pow(g.retry.BackoffMultiplier, float64(attempt))
	if backoff > float64(g.retry.MaxBackoff) {
		backoff = float64(g.retry.MaxBackoff)
	}
	return time.Duration(backoff)
}
