// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/outreach-cli/internal/score"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Crawl      CrawlConfig      `yaml:"crawl" mapstructure:"crawl"`
	Score      ScoreConfig      `yaml:"score" mapstructure:"score"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Cascade    CascadeConfig    `yaml:"cascade" mapstructure:"cascade"`
	ZeroBounce ZeroBounceConfig `yaml:"zerobounce" mapstructure:"zerobounce"`
	Predictor  PredictorConfig  `yaml:"predictor" mapstructure:"predictor"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres DSN
}

// CrawlConfig configures the per-organization crawl session.
type CrawlConfig struct {
	MaxPages          int      `yaml:"max_pages" mapstructure:"max_pages"`
	LowScorePages     int      `yaml:"low_score_pages" mapstructure:"low_score_pages"`
	MidScorePages     int      `yaml:"mid_score_pages" mapstructure:"mid_score_pages"`
	HighScore         int      `yaml:"high_score" mapstructure:"high_score"`
	MidScore          int      `yaml:"mid_score" mapstructure:"mid_score"`
	PolitenessDelayMs int      `yaml:"politeness_delay_ms" mapstructure:"politeness_delay_ms"`
	TimeoutSecs       int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent         string   `yaml:"user_agent" mapstructure:"user_agent"`
	ExcludePaths      []string `yaml:"exclude_paths" mapstructure:"exclude_paths"`
}

// ScoreConfig exposes the confidence weight table.
type ScoreConfig struct {
	Weights score.Weights `yaml:"weights" mapstructure:"weights"`
}

// ExtractConfig configures signal extraction.
type ExtractConfig struct {
	GenericLocalParts  []string `yaml:"generic_local_parts" mapstructure:"generic_local_parts"`
	PlaceholderPhrases []string `yaml:"placeholder_phrases" mapstructure:"placeholder_phrases"`
}

// CascadeConfig configures the validation cascade.
type CascadeConfig struct {
	SpacingMs      int `yaml:"spacing_ms" mapstructure:"spacing_ms"`
	MaxSuggestions int `yaml:"max_suggestions" mapstructure:"max_suggestions"`
}

// ZeroBounceConfig holds ZeroBounce API settings.
type ZeroBounceConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PredictorConfig selects the email suggestion backend.
type PredictorConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // perplexity, anthropic, or off
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RetryConfig configures transient-failure retries for outbound HTTP.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the fields required for the given mode are present
// and sane. Modes: "enrich" (network pipeline), "store" (store-only commands
// such as import, export, quarantine, migrate).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "store.driver must be sqlite or postgres")
	}

	switch mode {
	case "enrich":
		if c.ZeroBounce.Key == "" {
			problems = append(problems, "zerobounce.key is required")
		}
		switch c.Predictor.Backend {
		case "perplexity":
			if c.Perplexity.Key == "" {
				problems = append(problems, "perplexity.key is required for the perplexity predictor")
			}
		case "anthropic":
			if c.Anthropic.Key == "" {
				problems = append(problems, "anthropic.key is required for the anthropic predictor")
			}
		case "off":
		default:
			problems = append(problems, "predictor.backend must be perplexity, anthropic, or off")
		}
		if c.Batch.Workers < 1 || c.Batch.Workers > 50 {
			problems = append(problems, "batch.workers must be between 1 and 50")
		}
		if c.Crawl.MaxPages < 1 {
			problems = append(problems, "crawl.max_pages must be >= 1")
		}
		if c.Crawl.HighScore <= c.Crawl.MidScore {
			problems = append(problems, "crawl.high_score must be greater than crawl.mid_score")
		}
	case "store":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "outreach.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.workers", 5)
	v.SetDefault("crawl.max_pages", 25)
	v.SetDefault("crawl.low_score_pages", 3)
	v.SetDefault("crawl.mid_score_pages", 5)
	v.SetDefault("crawl.high_score", 80)
	v.SetDefault("crawl.mid_score", 40)
	v.SetDefault("crawl.politeness_delay_ms", 200)
	v.SetDefault("crawl.timeout_secs", 20)
	v.SetDefault("crawl.exclude_paths", []string{"/blog/*", "/news/*", "/press/*", "/careers/*"})
	w := score.DefaultWeights()
	v.SetDefault("score.weights.structured_email", w.StructuredEmail)
	v.SetDefault("score.weights.direct_personal_email", w.DirectPersonalEmail)
	v.SetDefault("score.weights.direct_generic_email", w.DirectGenericEmail)
	v.SetDefault("score.weights.structured_phone", w.StructuredPhone)
	v.SetDefault("score.weights.direct_phone", w.DirectPhone)
	v.SetDefault("score.weights.structured_name", w.StructuredName)
	v.SetDefault("score.weights.direct_name_with_title", w.DirectNameWithTitle)
	v.SetDefault("score.weights.direct_name", w.DirectName)
	v.SetDefault("score.weights.many_contact_pages", w.ManyContactPages)
	v.SetDefault("score.weights.few_contact_pages", w.FewContactPages)
	v.SetDefault("cascade.spacing_ms", 1000)
	v.SetDefault("cascade.max_suggestions", 5)
	v.SetDefault("zerobounce.base_url", "https://api.zerobounce.net/v2")
	v.SetDefault("predictor.backend", "perplexity")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.2)

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
