package config

import (
	"time"
)

// DefaultConfig returns a complete configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		// Core settings
		Environment: "development",
		ServiceName: "videoforge",
		LogLevel:    "info",
		Version:     "1.0.0",

		// Component configurations with defaults
		Adapters: DefaultAdapterConfig(),
		HTTP:     DefaultHTTPConfig(),
		LLM:      DefaultLLMConfig(),
		Video:    DefaultVideoConfig(),
		Render:   DefaultRenderConfig(),
		Retry:    DefaultRetryConfig(),
		Storage:  DefaultStorageConfig(),
		Status:   DefaultStatusConfig(),
		Media:    DefaultMediaConfig(),
	}
}

// DefaultAdapterConfig returns default adapter selection
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		Storage: "filesystem",
		Status:  "memory",
		Logger:  "stdout",
		Metrics: "stdout",
	}
}

// DefaultHTTPConfig returns sensible defaults for the HTTP server
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Addr:            ":8001",
		ReadTimeout:     120 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// DefaultLLMConfig returns sensible defaults for the LLM gateway
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Provider:    "gemini",
		GeminiModel: "gemini-2.5-pro",
		OpenAIModel: "gpt-4o-mini",
		MaxRetries:  3,
		Temperature: 0.3,
		MaxTokens:   4096,
	}
}

// DefaultVideoConfig returns the default pipeline directory layout
func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		TempDir:       "temp",
		OutputDir:     "static/videomedia",
		FinalDir:      "static/final_videos",
		VoiceoverDir:  "static/videomedia/voiceovers",
		MaxTextLength: 5000,
		MinTextLength: 10,
	}
}

// DefaultRenderConfig returns sensible defaults for the render runner
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		PythonBin: "python3",
		Timeout:   10 * time.Minute,
		Quality:   "1080p60",
	}
}

// DefaultRetryConfig returns the pipeline retry budgets
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxFixAttempts:        3,
		MaxRegenerateAttempts: 2,
		RegenerateDelay:       2 * time.Second,
		InitialBackoff:        time.Second,
		MaxBackoff:            30 * time.Second,
		BackoffMultiplier:     2.0,
	}
}

// DefaultStorageConfig returns sensible defaults for storage configuration
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		BucketOrPath: "static/final_videos",
		Timeout:      30 * time.Second,
		S3:           DefaultS3Config(),
	}
}

// DefaultS3Config returns sensible defaults for S3 configuration
func DefaultS3Config() S3Config {
	return S3Config{
		Region: "us-east-2",
	}
}

// DefaultStatusConfig returns sensible defaults for the status store
func DefaultStatusConfig() StatusConfig {
	return StatusConfig{
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		TTL: 24 * time.Hour,
	}
}

// DefaultMediaConfig returns sensible defaults for the media tools
func DefaultMediaConfig() MediaConfig {
	return MediaConfig{
		FFmpegBin:    "ffmpeg",
		FFprobeBin:   "ffprobe",
		AudioCodec:   "aac",
		AudioBitrate: "128k",
		Timeout:      2 * time.Minute,
	}
}

// applyDefaults applies environment-specific defaults
func applyDefaults(cfg *Config) {
	if cfg.IsLocal() {
		if cfg.Adapters.Storage == "" {
			cfg.Adapters.Storage = "filesystem"
		}
		if cfg.Adapters.Status == "" {
			cfg.Adapters.Status = "memory"
		}
		if cfg.Adapters.Logger == "" {
			cfg.Adapters.Logger = "stdout"
		}
		if cfg.Adapters.Metrics == "" {
			cfg.Adapters.Metrics = "stdout"
		}
	} else if cfg.IsProduction() {
		if cfg.Adapters.Storage == "" {
			cfg.Adapters.Storage = "s3"
		}
		if cfg.Adapters.Status == "" {
			cfg.Adapters.Status = "redis"
		}
		if cfg.Adapters.Logger == "" {
			cfg.Adapters.Logger = "stdout"
		}
		if cfg.Adapters.Metrics == "" {
			cfg.Adapters.Metrics = "prometheus"
		}
		// More conservative settings for production
		if cfg.Retry.MaxBackoff < 30*time.Second {
			cfg.Retry.MaxBackoff = 30 * time.Second
		}
	}

	// Set bucket/path default if still empty
	if cfg.Storage.BucketOrPath == "" {
		if cfg.Adapters.Storage == "s3" {
			cfg.Storage.BucketOrPath = cfg.ServiceName + "-videos"
		} else {
			cfg.Storage.BucketOrPath = cfg.Video.FinalDir
		}
	}
}
