package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process settings read from the environment.
type Config struct {
	Port         string
	DatabasePath string
	JWTSecret    string
	CookieSecure bool
	BcryptCost   int
	LogLevel     slog.Level

	DefaultPhotoURL string

	MemcacheServers []string
	SuggestionTTL   time.Duration

	NATSURL   string
	ZipkinURL string

	OrphanSweepSchedule string
	OrphanGracePeriod   time.Duration
}

// Load reads an optional .env file into the process environment and then
// builds a Config from it. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(key, defaultVal string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return defaultVal
	}

	cfg := &Config{
		Port:                env("PORT", "8080"),
		DatabasePath:        env("DATABASE_PATH", "recipe-community.db"),
		JWTSecret:           getenv("JWT_SECRET"),
		CookieSecure:        getenv("COOKIE_SECURE") != "false", // secure unless explicitly disabled
		BcryptCost:          12,
		DefaultPhotoURL:     env("DEFAULT_PHOTO_URL", "/static/default-avatar.png"),
		NATSURL:             getenv("NATS_URL"),
		ZipkinURL:           getenv("ZIPKIN_URL"),
		OrphanSweepSchedule: env("ORPHAN_SWEEP_SCHEDULE", "@hourly"),
		SuggestionTTL:       5 * time.Minute,
		OrphanGracePeriod:   24 * time.Hour,
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}

	if v := getenv("BCRYPT_COST"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
		}
		if parsed < 4 || parsed > 14 {
			return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 14, got %d", parsed)
		}
		cfg.BcryptCost = parsed
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
	}

	for s := range strings.SplitSeq(getenv("MEMCACHE_SERVERS"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			cfg.MemcacheServers = append(cfg.MemcacheServers, s)
		}
	}

	var err error
	if cfg.SuggestionTTL, err = duration(getenv, "SUGGESTION_TTL", cfg.SuggestionTTL); err != nil {
		return nil, err
	}
	if cfg.OrphanGracePeriod, err = duration(getenv, "ORPHAN_GRACE_PERIOD", cfg.OrphanGracePeriod); err != nil {
		return nil, err
	}

	return cfg, nil
}

func duration(getenv func(string) string, key string, defaultVal time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
