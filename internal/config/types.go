package config

import (
	"time"
)

// Config holds all application configuration
type Config struct {
	// Core settings
	Environment string
	ServiceName string
	LogLevel    string
	Version     string

	// Adapter selection
	Adapters AdapterConfig

	// Component configurations
	HTTP    HTTPConfig
	LLM     LLMConfig
	Video   VideoConfig
	Render  RenderConfig
	Retry   RetryConfig
	Storage StorageConfig
	Status  StatusConfig
	Media   MediaConfig
}

// AdapterConfig specifies which implementations to use
type AdapterConfig struct {
	Storage string // "filesystem", "s3"
	Status  string // "memory", "redis"
	Logger  string // "stdout"
	Metrics string // "stdout", "prometheus"
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// LLMConfig holds the LLM gateway configuration
type LLMConfig struct {
	Provider     string // "gemini", "openai"
	GeminiAPIKey string
	GeminiModel  string
	OpenAIAPIKey string
	OpenAIModel  string
	MaxRetries   int
	Temperature  float32
	MaxTokens    int
}

// VideoConfig holds pipeline paths and limits
type VideoConfig struct {
	TempDir       string // generated scene programs
	OutputDir     string // render tool media output root
	FinalDir      string // canonical storage for completed videos
	VoiceoverDir  string // narration cache searched by audio repair
	MaxTextLength int
	MinTextLength int
}

// RenderConfig holds the out-of-process render runner configuration
type RenderConfig struct {
	PythonBin string
	Timeout   time.Duration
	Quality   string // default resolution preset, e.g. "1080p60"
}

// RetryConfig holds the pipeline retry budgets
type RetryConfig struct {
	MaxFixAttempts        int
	MaxRegenerateAttempts int
	RegenerateDelay       time.Duration
	InitialBackoff        time.Duration
	MaxBackoff            time.Duration
	BackoffMultiplier     float64
}

type StorageConfig struct {
	// Common fields for all storage types
	BucketOrPath string
	Timeout      time.Duration

	// S3-specific configuration
	S3 S3Config
}

// S3Config holds S3-specific configuration
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // For MinIO or S3-compatible services
}

// StatusConfig holds status store configuration
type StatusConfig struct {
	Redis RedisConfig
	TTL   time.Duration
}

// RedisConfig - minimal config
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MediaConfig holds the external media tool configuration
type MediaConfig struct {
	FFmpegBin    string
	FFprobeBin   string
	AudioCodec   string
	AudioBitrate string
	Timeout      time.Duration
}
