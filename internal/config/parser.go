package config

// parse reads configuration from environment variables
func parse() (*Config, error) {
	cfg := &Config{
		// Core
		Environment: getEnv("ENVIRONMENT", "local"),
		ServiceName: getEnv("SERVICE_NAME", "videoforge"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Version:     getEnv("SERVICE_VERSION", "1.0.0"),

		// Adapter selection
		Adapters: AdapterConfig{
			Storage: getEnv("ADAPTER_STORAGE", ""),
			Status:  getEnv("ADAPTER_STATUS", ""),
			Logger:  getEnv("ADAPTER_LOGGER", ""),
			Metrics: getEnv("ADAPTER_METRICS", ""),
		},

		// HTTP Configuration
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8001"),
			ReadTimeout:     getDuration("HTTP_READ_TIMEOUT", "120s"),
			WriteTimeout:    getDuration("HTTP_WRITE_TIMEOUT", "120s"),
			ShutdownTimeout: getDuration("HTTP_SHUTDOWN_TIMEOUT", "30s"),
		},

		// LLM Configuration
		LLM: LLMConfig{
			Provider:     getEnv("LLM_PROVIDER", "gemini"),
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			MaxRetries:   getInt("LLM_MAX_RETRIES", 3),
			Temperature:  float32(getFloat64("LLM_TEMPERATURE", 0.3)),
			MaxTokens:    getInt("LLM_MAX_TOKENS", 4096),
		},

		// Video pipeline directories and limits
		Video: VideoConfig{
			TempDir:       getEnv("VIDEO_TEMP_DIR", "temp"),
			OutputDir:     getEnv("VIDEO_OUTPUT_DIR", "static/videomedia"),
			FinalDir:      getEnv("VIDEO_FINAL_DIR", "static/final_videos"),
			VoiceoverDir:  getEnv("VIDEO_VOICEOVER_DIR", "static/videomedia/voiceovers"),
			MaxTextLength: getInt("VIDEO_MAX_TEXT_LENGTH", 5000),
			MinTextLength: getInt("VIDEO_MIN_TEXT_LENGTH", 10),
		},

		// Render runner
		Render: RenderConfig{
			PythonBin: getEnv("RENDER_PYTHON_BIN", "python3"),
			Timeout:   getDuration("RENDER_TIMEOUT", "10m"),
			Quality:   getEnv("RENDER_QUALITY", "1080p60"),
		},

		// Retry budgets
		Retry: RetryConfig{
			MaxFixAttempts:        getInt("RETRY_MAX_FIX_ATTEMPTS", 3),
			MaxRegenerateAttempts: getInt("RETRY_MAX_REGENERATE_ATTEMPTS", 2),
			RegenerateDelay:       getDuration("RETRY_REGENERATE_DELAY", "2s"),
			InitialBackoff:        getDuration("RETRY_INITIAL_BACKOFF", "1s"),
			MaxBackoff:            getDuration("RETRY_MAX_BACKOFF", "30s"),
			BackoffMultiplier:     getFloat64("RETRY_BACKOFF_MULTIPLIER", 2.0),
		},

		// Storage Configuration
		Storage: StorageConfig{
			BucketOrPath: getEnv("STORAGE_BUCKET_OR_PATH", ""),
			Timeout:      getDuration("STORAGE_TIMEOUT", "30s"),
			S3: S3Config{
				Region:          getEnv("AWS_REGION", "us-east-2"),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
			},
		},

		// Status store
		Status: StatusConfig{
			Redis: RedisConfig{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getInt("REDIS_DB", 0),
			},
			TTL: getDuration("STATUS_TTL", "24h"),
		},

		// Media tools
		Media: MediaConfig{
			FFmpegBin:    getEnv("FFMPEG_BIN", "ffmpeg"),
			FFprobeBin:   getEnv("FFPROBE_BIN", "ffprobe"),
			AudioCodec:   getEnv("AUDIO_CODEC", "aac"),
			AudioBitrate: getEnv("AUDIO_BITRATE", "128k"),
			Timeout:      getDuration("MEDIA_TIMEOUT", "2m"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}
