package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the uxcelerator service.
type Config struct {
	Server       ServerConfig
	Log          LogConfig
	LLM          LLMConfig
	Recommend    RecommendConfig
	Notification NotificationConfig
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
	Environment string // "production" switches gin to release mode
}

// LogConfig controls the process-wide slog handler.
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	File       string // empty logs to stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LLMConfig selects and configures the language-model provider.
type LLMConfig struct {
	Provider    string // "anthropic" or "openai"
	BaseURL     string // defaults per provider
	Model       string
	APIKey      string // expanded from env var by Load
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
	RateLimit   RateLimitConfig
}

// RateLimitConfig bounds calls to the provider. Zero RequestsPerSecond disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// RecommendConfig controls the retry loop and prompt defaults.
type RecommendConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
	DefaultGoal string
}

// NotificationConfig controls where terminal failures are reported.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"

	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultAnthropicModel   = "claude-3-haiku-20240307"
	defaultOpenAIModel      = "gpt-4o-mini"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server       rawServerConfig    `yaml:"server"`
	Log          rawLogConfig       `yaml:"log"`
	LLM          rawLLMConfig       `yaml:"llm"`
	Recommend    rawRecommendConfig `yaml:"recommend"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
	Environment string   `yaml:"environment"`
}

type rawLogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type rawLLMConfig struct {
	Provider    string          `yaml:"provider"`
	BaseURL     string          `yaml:"base_url"`
	Model       string          `yaml:"model"`
	APIKey      string          `yaml:"api_key"`
	Timeout     string          `yaml:"timeout"`
	MaxTokens   int             `yaml:"max_tokens"`
	Temperature float64         `yaml:"temperature"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

type rawRecommendConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	RetryDelay  string `yaml:"retry_delay"`
	DefaultGoal string `yaml:"default_goal"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. An empty path skips the file and uses defaults plus the
// environment. A .env file in the working directory is loaded first if present.
func Load(path string) (*Config, error) {
	// Missing .env is normal outside development.
	_ = godotenv.Load()

	var raw rawConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	var err error

	llmTimeout := 60 * time.Second // default
	if raw.LLM.Timeout != "" {
		llmTimeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}

	var retryDelay time.Duration // default: retry immediately
	if raw.Recommend.RetryDelay != "" {
		retryDelay, err = time.ParseDuration(raw.Recommend.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("parse recommend.retry_delay %q: %w", raw.Recommend.RetryDelay, err)
		}
	}

	provider := strings.ToLower(raw.LLM.Provider)
	if provider == "" {
		provider = ProviderAnthropic
	}

	baseURL, model, apiKey := raw.LLM.BaseURL, raw.LLM.Model, raw.LLM.APIKey
	switch provider {
	case ProviderAnthropic:
		baseURL = orDefault(baseURL, defaultAnthropicBaseURL)
		model = orDefault(model, defaultAnthropicModel)
		apiKey = orDefault(apiKey, os.Getenv("ANTHROPIC_API_KEY"))
	case ProviderOpenAI:
		baseURL = orDefault(baseURL, defaultOpenAIBaseURL)
		model = orDefault(model, defaultOpenAIModel)
		apiKey = orDefault(apiKey, os.Getenv("OPENAI_API_KEY"))
	}

	maxTokens := raw.LLM.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	burst := raw.LLM.RateLimit.Burst
	if burst == 0 {
		burst = 2
	}

	maxAttempts := raw.Recommend.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 5
	}

	corsOrigins := raw.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	notification := raw.Notification
	if notification.Type == "" {
		notification.Type = "log"
	}

	return &Config{
		Server: ServerConfig{
			Addr:        orDefault(raw.Server.Addr, orDefault(portAddr(os.Getenv("PORT")), ":8080")),
			CORSOrigins: corsOrigins,
			Environment: orDefault(raw.Server.Environment, orDefault(os.Getenv("APP_ENV"), "development")),
		},
		Log: LogConfig{
			Level:      strings.ToLower(orDefault(raw.Log.Level, "info")),
			Format:     strings.ToLower(orDefault(raw.Log.Format, "text")),
			File:       raw.Log.File,
			MaxSizeMB:  orDefaultInt(raw.Log.MaxSizeMB, 100),
			MaxBackups: orDefaultInt(raw.Log.MaxBackups, 3),
			MaxAgeDays: orDefaultInt(raw.Log.MaxAgeDays, 28),
		},
		LLM: LLMConfig{
			Provider:    provider,
			BaseURL:     strings.TrimRight(baseURL, "/"),
			Model:       model,
			APIKey:      apiKey,
			Timeout:     llmTimeout,
			MaxTokens:   maxTokens,
			Temperature: raw.LLM.Temperature,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: raw.LLM.RateLimit.RequestsPerSecond,
				Burst:             burst,
			},
		},
		Recommend: RecommendConfig{
			MaxAttempts: maxAttempts,
			RetryDelay:  retryDelay,
			DefaultGoal: raw.Recommend.DefaultGoal,
		},
		Notification: notification,
	}, nil
}

func validate(cfg *Config) error {
	switch cfg.LLM.Provider {
	case ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("llm.provider must be %q or %q, got %q", ProviderAnthropic, ProviderOpenAI, cfg.LLM.Provider)
	}
	if cfg.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required (or set the provider's API key env var)")
	}
	if cfg.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %v", cfg.LLM.Timeout)
	}
	if cfg.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("llm.rate_limit.requests_per_second must not be negative")
	}

	if cfg.Recommend.MaxAttempts < 1 {
		return fmt.Errorf("recommend.max_attempts must be at least 1, got %d", cfg.Recommend.MaxAttempts)
	}
	if cfg.Recommend.RetryDelay < 0 {
		return fmt.Errorf("recommend.retry_delay must not be negative, got %v", cfg.Recommend.RetryDelay)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", cfg.Log.Level)
	}

	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 || cfg.Log.MaxAgeDays < 0 {
		return fmt.Errorf("log rotation settings must not be negative")
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func orDefaultInt(value, def int) int {
	if value == 0 {
		return def
	}
	return value
}

func portAddr(port string) string {
	if port == "" {
		return ""
	}
	return ":" + port
}
