package config

import (
	"fmt"
	"strings"
)

// Validate validates the entire configuration
func (c *Config) Validate() error {
	var errors []string

	// Core validations
	if c.ServiceName == "" {
		errors = append(errors, "SERVICE_NAME is required")
	}

	// Validate adapters
	if err := c.Adapters.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate LLM config
	if err := c.LLM.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate storage based on selected adapter
	if err := c.Storage.Validate(c.Adapters); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate retry budgets
	if err := c.Retry.Validate(); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks adapter selection
func (a *AdapterConfig) Validate() error {
	var errors []string

	switch a.Storage {
	case "filesystem", "s3":
	default:
		errors = append(errors, fmt.Sprintf("invalid storage adapter: %q (valid: filesystem, s3)", a.Storage))
	}

	switch a.Status {
	case "memory", "redis":
	default:
		errors = append(errors, fmt.Sprintf("invalid status adapter: %q (valid: memory, redis)", a.Status))
	}

	switch a.Logger {
	case "stdout":
	default:
		errors = append(errors, fmt.Sprintf("invalid logger adapter: %q (valid: stdout)", a.Logger))
	}

	switch a.Metrics {
	case "stdout", "prometheus":
	default:
		errors = append(errors, fmt.Sprintf("invalid metrics adapter: %q (valid: stdout, prometheus)", a.Metrics))
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// Validate checks the LLM gateway configuration
func (l *LLMConfig) Validate() error {
	switch strings.ToLower(l.Provider) {
	case "gemini":
		if l.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case "openai":
		if l.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("invalid LLM provider: %q (valid: gemini, openai)", l.Provider)
	}

	if l.MaxRetries < 1 {
		return fmt.Errorf("LLM_MAX_RETRIES must be at least 1")
	}
	return nil
}

// Validate checks storage configuration for the selected adapter
func (s *StorageConfig) Validate(adapters AdapterConfig) error {
	if s.BucketOrPath == "" {
		return fmt.Errorf("STORAGE_BUCKET_OR_PATH is required")
	}
	if adapters.Storage == "s3" && s.S3.Region == "" {
		return fmt.Errorf("AWS_REGION is required when storage adapter is s3")
	}
	return nil
}

// Validate checks the retry budget configuration
func (r *RetryConfig) Validate() error {
	if r.MaxFixAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_FIX_ATTEMPTS must be at least 1")
	}
	if r.MaxRegenerateAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_REGENERATE_ATTEMPTS must be at least 1")
	}
	if r.BackoffMultiplier < 1 {
		return fmt.Errorf("RETRY_BACKOFF_MULTIPLIER must be at least 1")
	}
	return nil
}
