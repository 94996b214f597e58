package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.Retry.MaxFixAttempts)
	assert.Equal(t, 2, cfg.Retry.MaxRegenerateAttempts)
	assert.Equal(t, 2*time.Second, cfg.Retry.RegenerateDelay)
	assert.Equal(t, "1080p60", cfg.Render.Quality)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestParseReadsEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RETRY_MAX_FIX_ATTEMPTS", "5")
	t.Setenv("HTTP_ADDR", ":9000")

	cfg, err := parse()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAIAPIKey)
	assert.Equal(t, 5, cfg.Retry.MaxFixAttempts)
	assert.Equal(t, ":9000", cfg.HTTP.Addr)
}

func TestValidateRejectsBadAdapters(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Adapters.Storage = "ftp"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage")
}

func TestValidateRejectsMissingProviderKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAIAPIKey = ""

	err := cfg.Validate()
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Retry.MaxFixAttempts = 0

	err := cfg.Validate()
	assert.Error(t, err)
}
