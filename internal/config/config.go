package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/godilite/maturity-engine/internal/aiclient"
)

const (
	envPrefix  = "MATURITY_"
	configFile = "MATURITY_CONFIG"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all configuration for the application.
type Config struct {
	AppEnv string `koanf:"app_env"`

	DBDriver string `koanf:"db_driver"`
	DBPath   string `koanf:"db_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	GRPCPort              int           `koanf:"grpc_port"`
	GRPCReflectionEnabled bool          `koanf:"grpc_reflection"`
	MetricsPort           int           `koanf:"metrics_port"`
	CacheTTL              time.Duration `koanf:"cache_ttl"`

	// AIProvider is one of none, mcp, gemini or openai. An empty AIBaseURL selects the
	// provider's default endpoint.
	AIProvider string        `koanf:"ai_provider"`
	AITimeout  time.Duration `koanf:"ai_timeout"`
	AIBaseURL  string        `koanf:"ai_base_url"`
	AIAPIKey   string        `koanf:"ai_api_key"`
	AIModel    string        `koanf:"ai_model"`

	HistoryLimit         int `koanf:"history_limit"`
	QuestionHistoryLimit int `koanf:"question_history_limit"`
	QuestionCount        int `koanf:"question_count"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		AppEnv:               "development",
		DBDriver:             "sqlite3",
		DBPath:               "./data/maturity.db",
		RedisAddr:            "localhost:6379",
		GRPCPort:             50051,
		MetricsPort:          9090,
		CacheTTL:             10 * time.Minute,
		AIProvider:           aiclient.ProviderMCP,
		AITimeout:            30 * time.Second,
		HistoryLimit:         5,
		QuestionHistoryLimit: 3,
		QuestionCount:        15,
	}
}

// Load layers defaults, the YAML file named by MATURITY_CONFIG and MATURITY_ prefixed
// environment variables, in increasing precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(configFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	for name, port := range map[string]int{"grpc_port": c.GRPCPort, "metrics_port": c.MetricsPort} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%w: %s %d must be between 1 and 65535", ErrInvalidConfig, name, port)
		}
	}
	if c.GRPCPort == c.MetricsPort {
		return fmt.Errorf("%w: grpc_port and metrics_port must differ", ErrInvalidConfig)
	}
	if c.AITimeout <= 0 {
		return fmt.Errorf("%w: ai_timeout must be positive", ErrInvalidConfig)
	}
	switch c.AIProvider {
	case "", aiclient.ProviderNone, aiclient.ProviderMCP, aiclient.ProviderGemini, aiclient.ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown ai_provider %q", ErrInvalidConfig, c.AIProvider)
	}
	if c.HistoryLimit < 1 || c.QuestionHistoryLimit < 1 || c.QuestionCount < 1 {
		return fmt.Errorf("%w: history and question limits must be positive", ErrInvalidConfig)
	}
	return nil
}

// AI returns the settings for the AI backend factory.
func (c *Config) AI() aiclient.Config {
	return aiclient.Config{
		Provider: c.AIProvider,
		BaseURL:  c.AIBaseURL,
		APIKey:   c.AIAPIKey,
		Model:    c.AIModel,
		Timeout:  c.AITimeout,
	}
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
