package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/amishk599/uxcelerator/internal/ai"
	"github.com/amishk599/uxcelerator/internal/config"
	"github.com/amishk599/uxcelerator/internal/model"
	"github.com/amishk599/uxcelerator/internal/notifier"
	"github.com/amishk599/uxcelerator/internal/ratelimit"
	"github.com/amishk599/uxcelerator/internal/recommender"
	"github.com/amishk599/uxcelerator/internal/retry"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:          "uxcelerator",
	Short:        "UX suggestions for any webpage",
	Long:         "uxcelerator sends a webpage's markup to an LLM and returns concrete UX-improvement suggestions.",
	SilenceUsage: true,
	// With no subcommand, run the API.
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: UXCELERATOR_CONFIG env var or ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > UXCELERATOR_CONFIG env var > "./config.yaml" if it exists.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("UXCELERATOR_CONFIG"); env != "" {
			path = env
		} else if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// setupLogger builds the process-wide logger. --debug overrides log.level.
// With log.file set, output goes to a size-rotated file instead of stdout.
func setupLogger(cfg config.LogConfig, dbg bool) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if dbg {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// bootstrap loads config and sets up logging; on failure it logs to stderr.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))
		fallback.Error("failed to load config", "error", err)
		return nil, nil, err
	}
	return cfg, setupLogger(cfg.Log, debug), nil
}

func setupProvider(cfg config.LLMConfig, httpClient *http.Client) (ai.LLMProvider, error) {
	var provider ai.LLMProvider
	switch cfg.Provider {
	case config.ProviderAnthropic:
		provider = ai.NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, httpClient)
	case config.ProviderOpenAI:
		provider = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature, httpClient)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}

	// Shared limiter: both task calls of a request draw from the same bucket.
	limiter := ratelimit.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	return ratelimit.Wrap(provider, limiter, cfg.Provider), nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildService wires provider → requester → retrying service.
func buildService(cfg *config.Config, logger *slog.Logger) (*recommender.Service, error) {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	provider, err := setupProvider(cfg.LLM, httpClient)
	if err != nil {
		return nil, err
	}

	goal := cfg.Recommend.DefaultGoal
	if strings.TrimSpace(goal) == "" {
		goal = ai.DefaultGoal
	}

	requester := recommender.NewRequester(provider, ai.RecommendationTemplate, ai.Tasks, goal, logger)
	policy := retry.Policy{MaxAttempts: cfg.Recommend.MaxAttempts, BaseDelay: cfg.Recommend.RetryDelay}
	return recommender.NewService(requester, policy, setupNotifier(cfg, httpClient, logger), logger), nil
}
