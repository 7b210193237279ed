// Package config resolves process settings from the environment, an optional
// .env file and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Providers accepted by LLMProvider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds every setting the CLI commands read.
type Config struct {
	Flow        string
	LLMProvider string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	GoogleAPIKey string
	GeminiModel  string

	RedisAddr  string
	SessionDir string
	Listen     string
	LogLevel   string
	LogFormat  string
	SessionTTL time.Duration
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Flow:        "",
		LLMProvider: ProviderOpenAI,
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.5-flash",
		Listen:      ":8080",
		LogLevel:    "info",
		LogFormat:   "text",
		SessionTTL:  2 * time.Hour,
	}
}

// Load reads the given .env files (".env" when none is named) into the
// process environment and builds a Config from it. Missing files are ignored;
// variables already set in the environment are not overwritten.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("HOSTFLOW_FLOW", &cfg.Flow)
	str("LLM_PROVIDER", &cfg.LLMProvider)
	str("HOSTFLOW_LLM_PROVIDER", &cfg.LLMProvider)
	str("OPENAI_API_KEY", &cfg.OpenAIAPIKey)
	str("OPENAI_BASE_URL", &cfg.OpenAIBaseURL)
	str("HOSTFLOW_OPENAI_MODEL", &cfg.OpenAIModel)
	str("GOOGLE_API_KEY", &cfg.GoogleAPIKey)
	str("HOSTFLOW_GEMINI_MODEL", &cfg.GeminiModel)
	str("HOSTFLOW_REDIS_ADDR", &cfg.RedisAddr)
	str("HOSTFLOW_SESSION_DIR", &cfg.SessionDir)
	str("HOSTFLOW_LISTEN", &cfg.Listen)
	str("HOSTFLOW_LOG_LEVEL", &cfg.LogLevel)
	str("HOSTFLOW_LOG_FORMAT", &cfg.LogFormat)

	if v, ok := lookup("HOSTFLOW_SESSION_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("HOSTFLOW_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}
	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	return cfg, nil
}

// BindFlags registers flags whose defaults are the current values of cfg,
// so a flag given on the command line overrides the environment.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.LLMProvider, "provider", cfg.LLMProvider, "language model provider (openai|gemini)")
	fs.StringVar(&cfg.OpenAIModel, "openai-model", cfg.OpenAIModel, "OpenAI-compatible model name")
	fs.StringVar(&cfg.OpenAIBaseURL, "openai-base-url", cfg.OpenAIBaseURL, "OpenAI-compatible endpoint")
	fs.StringVar(&cfg.GeminiModel, "gemini-model", cfg.GeminiModel, "Gemini model name")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for session snapshots (memory when empty)")
	fs.StringVar(&cfg.SessionDir, "session-dir", cfg.SessionDir, "directory for session snapshots when Redis is not used")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text|json)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "how long idle session snapshots are kept")
}

// FlowPath returns the first argument when present, the configured flow otherwise.
func (c Config) FlowPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.Flow != "" {
		return c.Flow, nil
	}
	return "", errors.New("no flow given: pass a path or set HOSTFLOW_FLOW")
}

// ValidateModel checks that the selected provider has its credentials.
func (c Config) ValidateModel() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			return errors.New("GOOGLE_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.LLMProvider, ProviderOpenAI, ProviderGemini)
	}
	return nil
}
