package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	ClassifierURL         string        `env:"CLASSIFIER_URL"`
	ClassifierTimeout     time.Duration `env:"CLASSIFIER_TIMEOUT" default:"10s"`
	ClassifierMaxAttempts int           `env:"CLASSIFIER_MAX_ATTEMPTS" default:"3"`

	TokenizerEncoding string `env:"TOKENIZER_ENCODING" default:"cl100k_base"`
	MaxTokens         int    `env:"MAX_TOKENS" default:"256"`

	FusionAlpha        float64 `env:"FUSION_ALPHA" default:"0.5"`
	FusionBeta         float64 `env:"FUSION_BETA" default:"0.2"`
	AnticipationWeight float64 `env:"ANTICIPATION_WEIGHT" default:"0.5"`
	EmojiPriorsFile    string  `env:"EMOJI_PRIORS_FILE"`

	InferenceCacheTTL        time.Duration `env:"INFERENCE_CACHE_TTL" default:"5m"`
	InferenceCacheMaxEntries int           `env:"INFERENCE_CACHE_MAX_ENTRIES" default:"10000"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" default:"*"`
	RateLimitRPS     float64  `env:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst   int      `env:"RATE_LIMIT_BURST" default:"20"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, &env.Options{SliceSep: ","}); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ClassifierURL == "" {
		return errors.New("CLASSIFIER_URL is required")
	}
	u, err := url.Parse(cfg.ClassifierURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CLASSIFIER_URL must be an absolute http(s) URL, got %q", cfg.ClassifierURL)
	}

	if cfg.ClassifierTimeout <= 0 {
		return errors.New("CLASSIFIER_TIMEOUT must be positive")
	}
	if cfg.ClassifierMaxAttempts < 1 {
		return errors.New("CLASSIFIER_MAX_ATTEMPTS must be at least 1")
	}
	if cfg.MaxTokens < 1 {
		return errors.New("MAX_TOKENS must be at least 1")
	}

	for name, v := range map[string]float64{
		"FUSION_ALPHA": cfg.FusionAlpha,
		"FUSION_BETA":  cfg.FusionBeta,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
	}
	if !(cfg.AnticipationWeight > 0) || math.IsInf(cfg.AnticipationWeight, 0) {
		return errors.New("ANTICIPATION_WEIGHT must be a positive number")
	}

	if cfg.InferenceCacheTTL < 0 {
		return errors.New("INFERENCE_CACHE_TTL must not be negative")
	}
	if cfg.InferenceCacheMaxEntries < 0 {
		return errors.New("INFERENCE_CACHE_MAX_ENTRIES must not be negative")
	}

	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST at least 1")
	}

	for i, origin := range cfg.CORSAllowOrigins {
		cfg.CORSAllowOrigins[i] = strings.TrimSpace(origin)
	}

	return nil
}
