// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jonathan/prospect-scorer/internal/ranking"
	"github.com/jonathan/prospect-scorer/internal/scoring"
	"github.com/jonathan/prospect-scorer/internal/server/ratelimit"
)

// EnvPrefix prefixes environment overrides, e.g. PROSPECT_RANKING_WORKERS.
const EnvPrefix = "PROSPECT"

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults.
type Config struct {
	Scoring     scoring.Config `mapstructure:"scoring" json:"scoring"`
	Ranking     RankingConfig  `mapstructure:"ranking" json:"ranking"`
	Log         LogConfig      `mapstructure:"log" json:"log"`
	Server      ServerConfig   `mapstructure:"server" json:"server"`
	DatabaseURL string         `mapstructure:"database_url" json:"database_url,omitempty"` // PostgreSQL connection URL
}

// RankingConfig tunes the ranking service.
type RankingConfig struct {
	Workers           int `mapstructure:"workers" json:"workers"`                       // 0 means GOMAXPROCS
	ParallelThreshold int `mapstructure:"parallel_threshold" json:"parallel_threshold"` // Smallest batch scored in parallel
	DefaultPageSize   int `mapstructure:"default_page_size" json:"default_page_size"`
	MaxPageSize       int `mapstructure:"max_page_size" json:"max_page_size"`
}

// ServerConfig configures the HTTP API started by the serve command.
type ServerConfig struct {
	Port      int             `mapstructure:"port" json:"port"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig sets per-client request budgets.
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
	// RequestsPerMinute applies to routes without a specific limit.
	RequestsPerMinute int `mapstructure:"requests_per_minute" json:"requests_per_minute"`
	// ScoringPerMinute applies to routes that rank candidates.
	ScoringPerMinute int      `mapstructure:"scoring_per_minute" json:"scoring_per_minute"`
	Whitelist        []string `mapstructure:"whitelist" json:"whitelist,omitempty"`
}

// LogConfig selects the logger encoding and level.
type LogConfig struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scoring: scoring.DefaultConfig(),
		Ranking: RankingConfig{
			ParallelThreshold: ranking.DefaultParallelThreshold,
			DefaultPageSize:   ranking.DefaultPageSize,
			MaxPageSize:       ranking.DefaultMaxPageSize,
		},
		Server: ServerConfig{
			Port: 8080,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 600,
				ScoringPerMinute:  60,
			},
		},
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension, on top
// of the defaults. Environment variables prefixed with PROSPECT_ override both; nested
// keys use underscores (PROSPECT_SCORING_WEIGHTS_GEO). An empty path loads defaults and
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("database_url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database_url: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	w := d.Scoring.Weights
	v.SetDefault("scoring.weights.semantic", w.Semantic)
	v.SetDefault("scoring.weights.role", w.Role)
	v.SetDefault("scoring.weights.industry", w.Industry)
	v.SetDefault("scoring.weights.geo", w.Geo)

	t := d.Scoring.Thresholds
	v.SetDefault("scoring.thresholds.keyword_weight", t.KeywordWeight)
	v.SetDefault("scoring.thresholds.partial_role_cap", t.PartialRoleCap)
	v.SetDefault("scoring.thresholds.sub_industry_score", t.SubIndustryScore)
	v.SetDefault("scoring.thresholds.partial_industry_cap", t.PartialIndustryCap)
	v.SetDefault("scoring.thresholds.partial_geo_cap", t.PartialGeoCap)
	v.SetDefault("scoring.thresholds.max_matched_keywords", t.MaxMatchedKeywords)

	v.SetDefault("ranking.workers", d.Ranking.Workers)
	v.SetDefault("ranking.parallel_threshold", d.Ranking.ParallelThreshold)
	v.SetDefault("ranking.default_page_size", d.Ranking.DefaultPageSize)
	v.SetDefault("ranking.max_page_size", d.Ranking.MaxPageSize)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.rate_limit.enabled", d.Server.RateLimit.Enabled)
	v.SetDefault("server.rate_limit.requests_per_minute", d.Server.RateLimit.RequestsPerMinute)
	v.SetDefault("server.rate_limit.scoring_per_minute", d.Server.RateLimit.ScoringPerMinute)

	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("database_url", d.DatabaseURL)
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("config error: scoring: %w", err)
	}

	if c.Ranking.Workers < 0 {
		return fmt.Errorf("config error: 'ranking.workers' must be non-negative")
	}
	if c.Ranking.ParallelThreshold < 0 {
		return fmt.Errorf("config error: 'ranking.parallel_threshold' must be non-negative")
	}
	if c.Ranking.DefaultPageSize < 0 || c.Ranking.MaxPageSize < 0 {
		return fmt.Errorf("config error: page sizes must be non-negative")
	}
	if c.Ranking.MaxPageSize > 0 && c.Ranking.DefaultPageSize > c.Ranking.MaxPageSize {
		return fmt.Errorf("config error: 'ranking.default_page_size' (%d) exceeds 'ranking.max_page_size' (%d)",
			c.Ranking.DefaultPageSize, c.Ranking.MaxPageSize)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' must be between 0 and 65535, got %d", c.Server.Port)
	}
	if rl := c.Server.RateLimit; rl.Enabled && (rl.RequestsPerMinute <= 0 || rl.ScoringPerMinute <= 0) {
		return fmt.Errorf("config error: rate limits must be positive when 'server.rate_limit.enabled' is set")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// This is used to layer CLI flag values over a loaded config file.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Scoring == (scoring.Config{}) {
		result.Scoring = defaults.Scoring
	}

	// Int fields: use default if zero
	if result.Ranking.Workers == 0 {
		result.Ranking.Workers = defaults.Ranking.Workers
	}
	if result.Ranking.ParallelThreshold == 0 {
		result.Ranking.ParallelThreshold = defaults.Ranking.ParallelThreshold
	}
	if result.Ranking.DefaultPageSize == 0 {
		result.Ranking.DefaultPageSize = defaults.Ranking.DefaultPageSize
	}
	if result.Ranking.MaxPageSize == 0 {
		result.Ranking.MaxPageSize = defaults.Ranking.MaxPageSize
	}

	if result.Server.Port == 0 {
		result.Server.Port = defaults.Server.Port
	}
	if result.Server.RateLimit.RequestsPerMinute == 0 {
		result.Server.RateLimit.RequestsPerMinute = defaults.Server.RateLimit.RequestsPerMinute
	}
	if result.Server.RateLimit.ScoringPerMinute == 0 {
		result.Server.RateLimit.ScoringPerMinute = defaults.Server.RateLimit.ScoringPerMinute
	}

	// Bool fields: cannot distinguish unset from false, so either source enables them
	result.Log.JSON = result.Log.JSON || defaults.Log.JSON
	result.Log.Debug = result.Log.Debug || defaults.Log.Debug
	result.Server.RateLimit.Enabled = result.Server.RateLimit.Enabled || defaults.Server.RateLimit.Enabled

	return result
}

// RankingOptions converts the ranking section into service options.
func (c *Config) RankingOptions() ranking.Options {
	return ranking.Options{
		Workers:           c.Ranking.Workers,
		ParallelThreshold: c.Ranking.ParallelThreshold,
		MaxPageSize:       c.Ranking.MaxPageSize,
	}
}

// RateLimiterConfig converts the rate limit section into limiter settings.
func (c *Config) RateLimiterConfig() *ratelimit.Config {
	rl := c.Server.RateLimit
	if !rl.Enabled {
		return &ratelimit.Config{Enabled: false}
	}
	limits := ratelimit.DefaultConfig(rl.RequestsPerMinute, rl.ScoringPerMinute)
	limits.Whitelist = ratelimit.ParseWhitelist(rl.Whitelist)
	return limits
}
