package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Scorer backends
const (
	ScorerHuggingFace = "huggingface"
	ScorerLexicon     = "lexicon"
)

// Config represents application configuration
type Config struct {
	Server      ServerConfig      `envconfig:"SERVER"`
	Reddit      RedditConfig      `envconfig:"REDDIT"`
	HuggingFace HuggingFaceConfig `envconfig:"HF"`
	Finnhub     FinnhubConfig     `envconfig:"FINNHUB"`
	Scoring     ScoringConfig     `envconfig:"SCORING"`
	Cache       CacheConfig       `envconfig:"CACHE"`
	Redis       RedisConfig       `envconfig:"REDIS"`
	Logging     LoggingConfig     `envconfig:"LOGGING"`
}

// ServerConfig represents HTTP listener parameters
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"5000" validate:"required,numeric"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	// HTTPTimeout bounds every outbound call (token, search, comments, classifier, quote)
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
}

// RedditConfig represents forum API credentials and search parameters
type RedditConfig struct {
	ClientID     string   `envconfig:"REDDIT_CLIENT_ID" validate:"required"`
	ClientSecret string   `envconfig:"REDDIT_CLIENT_SECRET" validate:"required"`
	UserAgent    string   `envconfig:"REDDIT_USER_AGENT" default:"ticker-sentiment/1.0" validate:"required"`
	TokenURL     string   `envconfig:"REDDIT_TOKEN_URL" default:"https://www.reddit.com/api/v1/access_token" validate:"required,url"`
	APIURL       string   `envconfig:"REDDIT_API_URL" default:"https://oauth.reddit.com" validate:"required,url"`
	Sections     []string `envconfig:"REDDIT_SECTIONS" default:"stocks,wallstreetbets,investing" validate:"min=1,dive,required"`
	SectionLimit int      `envconfig:"REDDIT_SECTION_LIMIT" default:"15" validate:"min=1,max=100"`
	CommentLimit int      `envconfig:"REDDIT_COMMENT_LIMIT" default:"10" validate:"min=0,max=100"`
	MaxPosts     int      `envconfig:"REDDIT_MAX_POSTS" default:"5" validate:"min=1"`
	// ReuseToken keeps the access token until its advertised expiry instead of
	// re-authenticating on every aggregation
	ReuseToken bool `envconfig:"REDDIT_REUSE_TOKEN" default:"false"`
}

// HuggingFaceConfig represents the hosted classifier endpoint
type HuggingFaceConfig struct {
	Token    string `envconfig:"HF_TOKEN"`
	ModelURL string `envconfig:"HF_MODEL_URL" default:"https://api-inference.huggingface.co/models/mrm8488/distilroberta-finetuned-financial-news-sentiment-analysis" validate:"required,url"`
}

// FinnhubConfig represents the quote API
type FinnhubConfig struct {
	APIKey  string `envconfig:"FINNHUB_KEY" validate:"required"`
	BaseURL string `envconfig:"FINNHUB_BASE_URL" default:"https://finnhub.io/api/v1" validate:"required,url"`
}

// ScoringConfig represents sentiment scoring parameters
type ScoringConfig struct {
	Backend string `envconfig:"SCORING_BACKEND" default:"huggingface" validate:"oneof=huggingface lexicon"`
	// Rate is the classifier request budget in requests per second
	Rate float64 `envconfig:"SCORING_RATE" default:"10" validate:"gt=0"`
}

// CacheConfig represents result cache parameters
type CacheConfig struct {
	TTL time.Duration `envconfig:"CACHE_TTL" default:"5m" validate:"gt=0"`
	// SweepInterval enables background removal of expired entries when > 0
	SweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"0s" validate:"gte=0"`
}

// RedisConfig represents the optional shared cache
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"30s"`
	LockWait time.Duration `envconfig:"REDIS_LOCK_WAIT" default:"20s"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	File  string `envconfig:"LOG_FILE"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Redis.Enabled {
		if c.Redis.Host == "" || c.Redis.Port <= 0 {
			return fmt.Errorf("redis host and port are required when redis is enabled")
		}
		if c.Redis.LockTTL <= 0 {
			return fmt.Errorf("redis lock_ttl must be positive")
		}
	}

	return nil
}

// UseHuggingFace reports whether the hosted classifier can be used
func (c *Config) UseHuggingFace() bool {
	return c.Scoring.Backend == ScorerHuggingFace && c.HuggingFace.Token != ""
}

// Addr returns redis address in host:port form
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
