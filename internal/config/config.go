// Package config loads application configuration from config.yaml and
// ENTBRAIN_-prefixed environment variables, and initializes the global
// logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timi233/enterprise-brain/internal/records"
)

// Config holds the full application configuration.
type Config struct {
	Records   RecordsConfig   `yaml:"records" mapstructure:"records"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Bocha     BochaConfig     `yaml:"bocha" mapstructure:"bocha"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RecordsConfig configures the Postgres record sets.
type RecordsConfig struct {
	DatabaseURL string             `yaml:"database_url" mapstructure:"database_url"`
	Pool        records.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// CacheConfig configures the SQLite result cache.
type CacheConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	TTLDays int    `yaml:"ttl_days" mapstructure:"ttl_days"`
}

// TTL returns the configured cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// BochaConfig holds Bocha web-search API settings.
type BochaConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Count     int    `yaml:"count" mapstructure:"count"`
	Freshness string `yaml:"freshness" mapstructure:"freshness"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig throttles outbound calls to the external services.
type SearchConfig struct {
	WebRPS        float64 `yaml:"web_rps" mapstructure:"web_rps"`
	WebBurst      int     `yaml:"web_burst" mapstructure:"web_burst"`
	GenerateRPS   float64 `yaml:"generate_rps" mapstructure:"generate_rps"`
	GenerateBurst int     `yaml:"generate_burst" mapstructure:"generate_burst"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("ENTBRAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("records.pool.max_conns", 10)
	v.SetDefault("records.pool.min_conns", 2)
	v.SetDefault("cache.path", "company_cache.db")
	v.SetDefault("cache.ttl_days", 90)
	v.SetDefault("bocha.base_url", "https://api.bochaai.com")
	v.SetDefault("bocha.count", 10)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("search.web_rps", 2.0)
	v.SetDefault("search.web_burst", 4)
	v.SetDefault("search.generate_rps", 1.0)
	v.SetDefault("search.generate_burst", 2)

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

// Validate checks that the settings required for enrichment are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Records.DatabaseURL == "" {
		missing = append(missing, "records.database_url (ENTBRAIN_RECORDS_DATABASE_URL)")
	}
	if c.Bocha.Key == "" {
		missing = append(missing, "bocha.key (ENTBRAIN_BOCHA_KEY)")
	}
	if c.Anthropic.Key == "" {
		missing = append(missing, "anthropic.key (ENTBRAIN_ANTHROPIC_KEY)")
	}
	if len(missing) > 0 {
		return eris.New("config: missing required settings: " + strings.Join(missing, ", "))
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
