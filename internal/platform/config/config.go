package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	AppEnv     string `env:"APP_ENV" default:"development"`
	ListenAddr string `env:"LISTEN_ADDR" default:"127.0.0.1:8080"`
	PublicURL  string `env:"PUBLIC_URL"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`
	LogFormat  string `env:"LOG_FORMAT" default:"text"`

	PublishTime        time.Time     `env:"PUBLISH_TIME" default:"2026-02-05T18:00:00Z"`
	RoundDurationHours int           `env:"ROUND_DURATION_HOURS" default:"24"`
	SeasonKey          string        `env:"SEASON_KEY" default:"box_mvp_clean_v1"`
	TickInterval       time.Duration `env:"TICK_INTERVAL" default:"1s"`
	LeaderboardSize    int           `env:"LEADERBOARD_SIZE" default:"12"`

	StoreBackend          string `env:"STORE_BACKEND" default:"bolt"`
	BoltPath              string `env:"BOLT_PATH" default:"boxvote.db"`
	RedisURL              string `env:"REDIS_URL"`
	StoreFailureThreshold int    `env:"STORE_FAILURE_THRESHOLD" default:"3"`

	VoteRateLimit float64 `env:"VOTE_RATE_LIMIT" default:"1"`
	VoteRateBurst int     `env:"VOTE_RATE_BURST" default:"5"`
}

// RoundDuration is the configured round length.
func (c *Config) RoundDuration() time.Duration {
	return time.Duration(c.RoundDurationHours) * time.Hour
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.RoundDurationHours <= 0 {
		return errors.New("ROUND_DURATION_HOURS must be positive")
	}
	if cfg.SeasonKey == "" {
		return errors.New("SEASON_KEY is required")
	}
	if cfg.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	if cfg.LeaderboardSize <= 0 {
		return errors.New("LEADERBOARD_SIZE must be positive")
	}
	if cfg.StoreFailureThreshold <= 0 {
		return errors.New("STORE_FAILURE_THRESHOLD must be positive")
	}
	if cfg.VoteRateLimit <= 0 || cfg.VoteRateBurst <= 0 {
		return errors.New("VOTE_RATE_LIMIT and VOTE_RATE_BURST must be positive")
	}

	switch cfg.StoreBackend {
	case BackendBolt:
		if cfg.BoltPath == "" {
			return errors.New("BOLT_PATH is required for the bolt backend")
		}
	case BackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of bolt, redis, memory, got %q", cfg.StoreBackend)
	}

	if cfg.PublicURL != "" {
		if u, err := url.Parse(cfg.PublicURL); err != nil || u.Host == "" {
			return fmt.Errorf("PUBLIC_URL must be an absolute URL, got %q", cfg.PublicURL)
		}
	}

	return nil
}
