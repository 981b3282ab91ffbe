// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"

	leaderboardsvc "github.com/R3E-Network/leaderboard/internal/app/services/leaderboard"
)

// Config holds every tunable the server reads at boot. Fields default to a
// standalone in-memory deployment; DATABASE_URL and REDIS_ADDR opt into the
// durable backends.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR,default=:8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`

	RankMode          string        `env:"RANK_MODE,default=inline"`
	RecomputeSchedule string        `env:"RECOMPUTE_SCHEDULE,default=@every 30s"`
	TopTTL            time.Duration `env:"LEADERBOARD_TOP_TTL,default=5s"`
	RankTTL           time.Duration `env:"LEADERBOARD_RANK_TTL,default=30s"`
	TopN              int           `env:"LEADERBOARD_TOP_N,default=10"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (Config, error) {
	// Missing .env files are expected outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot honor.
func (c Config) Validate() error {
	switch leaderboardsvc.RecomputeMode(c.RankMode) {
	case leaderboardsvc.ModeInline, leaderboardsvc.ModeBatch:
	default:
		return fmt.Errorf("invalid RANK_MODE %q: must be %q or %q",
			c.RankMode, leaderboardsvc.ModeInline, leaderboardsvc.ModeBatch)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("invalid LEADERBOARD_TOP_N %d: must be positive", c.TopN)
	}
	if c.TopTTL < 0 || c.RankTTL < 0 {
		return fmt.Errorf("cache TTLs must be non-negative")
	}
	return nil
}

// Leaderboard converts the flat environment fields into the ranking engine's
// configuration.
func (c Config) Leaderboard() leaderboardsvc.Config {
	return leaderboardsvc.Config{
		Mode:    leaderboardsvc.RecomputeMode(c.RankMode),
		TopTTL:  c.TopTTL,
		RankTTL: c.RankTTL,
		TopN:    c.TopN,
	}
}
