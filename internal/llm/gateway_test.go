package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoforge/internal/config"
	"videoforge/internal/observability/adapters/stdout"
)

type flakyBackend struct {
	failures int
	calls    int
}

func (b *flakyBackend) Name() string { return "flaky" }

func (b *flakyBackend) Generate(_ context.Context, _ Message) (string, error) {
	b.calls++
	if b.calls <= b.failures {
		return "", errors.New("transient failure")
	}
	return "generated content", nil
}

func testRetryConfig() *config.RetryConfig {
	return &config.RetryConfig{
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func newTestGateway(backend Backend, provider string, maxTries int) *Gateway {
	return NewGatewayWithBackends(
		map[string]Backend{backend.Name(): backend},
		provider,
		testRetryConfig(),
		maxTries,
		stdout.NewLogger("error"),
		stdout.NewMetrics(),
	)
}

func TestGateway_SucceedsAfterRetry(t *testing.T) {
	backend := &flakyBackend{failures: 2}
	g := newTestGateway(backend, "flaky", 3)

	result, err := g.Generate(context.Background(), Message{Text: "soru"})

	require.NoError(t, err)
	assert.Equal(t, "generated content", result)
	assert.Equal(t, 3, backend.calls)
}

func TestGateway_ExhaustsRetries(t *testing.T) {
	backend := &flakyBackend{failures: 10}
	g := newTestGateway(backend, "flaky", 3)

	_, err := g.Generate(context.Background(), Message{Text: "soru"})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "flaky", genErr.Provider)
	assert.Equal(t, 3, genErr.Attempts)
	assert.Equal(t, 3, backend.calls)
}

func TestGateway_UnconfiguredProvider(t *testing.T) {
	backend := &flakyBackend{}
	g := newTestGateway(backend, "missing", 3)

	_, err := g.Generate(context.Background(), Message{Text: "soru"})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "missing", genErr.Provider)
	assert.Zero(t, backend.calls)
}

func TestGateway_StopsOnContextCancellation(t *testing.T) {
	backend := &flakyBackend{failures: 10}
	g := newTestGateway(backend, "flaky", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, Message{Text: "soru"})

	require.Error(t, err)
	// The backend error is not context-aware here, but the backoff wait
	// observes the cancelled context and stops the loop early.
	assert.Less(t, backend.calls, 5)
}

func TestGateway_BackoffIsCapped(t *testing.T) {
	g := newTestGateway(&flakyBackend{}, "flaky", 3)

	assert.Equal(t, time.Millisecond, g.calculateBackoff(0))
	assert.Equal(t, 2*time.Millisecond, g.calculateBackoff(1))
	assert.Equal(t, 4*time.Millisecond, g.calculateBackoff(2))
	assert.Equal(t, 5*time.Millisecond, g.calculateBackoff(3))
	assert.Equal(t, 5*time.Millisecond, g.calculateBackoff(10))
}
