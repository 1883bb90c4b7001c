// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is constructed once at
// startup and passed explicitly into the pipeline; nothing reads process
// environment at call time.
type Config struct {
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Retry   RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// LLMConfig holds settings for the text-generation provider.
type LLMConfig struct {
	// Provider selects the client: "openai" (any OpenAI-compatible
	// chat-completions endpoint) or "anthropic".
	Provider string `yaml:"provider" mapstructure:"provider"`
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`

	// Model generates proposal documents; ResearchModel handles the cheaper
	// budget and market research calls.
	Model         string `yaml:"model" mapstructure:"model"`
	ResearchModel string `yaml:"research_model" mapstructure:"research_model"`

	TimeoutSecs       int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxTokens         int `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// RetryConfig holds the shared backoff policy applied to every LLM call.
type RetryConfig struct {
	MaxRetries     int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialDelayMs int     `yaml:"initial_delay_ms" mapstructure:"initial_delay_ms"`
	MaxDelayMs     int     `yaml:"max_delay_ms" mapstructure:"max_delay_ms"`
	JitterFraction float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// PricingConfig holds pricing-engine settings.
type PricingConfig struct {
	// MinimumEngagement is the smallest engagement the firm will quote, in
	// dollars.
	MinimumEngagement float64 `yaml:"minimum_engagement" mapstructure:"minimum_engagement"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROPOSAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.research_model", "gpt-4o-mini")
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.requests_per_minute", 60)
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.initial_delay_ms", 2000)
	v.SetDefault("retry.max_delay_ms", 60000)
	v.SetDefault("retry.jitter_fraction", 0.0)
	v.SetDefault("pricing.minimum_engagement", 10000.0)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "proposals.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration required for LLM-backed commands is
// present.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return eris.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Key == "" {
		return eris.New("config: llm.key is required (set PROPOSAL_LLM_KEY)")
	}
	if c.Pricing.MinimumEngagement < 0 {
		return eris.New("config: pricing.minimum_engagement must not be negative")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
