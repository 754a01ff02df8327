package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the API server.
type Config struct {
	HTTPAddr    string
	LogLevel    string
	LogFormat   string
	DatabaseURL string

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	LoginRatePerMinute int
	LoginBurst         int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables (optionally .env).
// DATABASE_URL may be empty; the server then answers data routes with 503.
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		HTTPAddr:             ":8081",
		LogLevel:             "info",
		LogFormat:            "json",
		SessionTTL:           12 * time.Hour,
		SessionSweepInterval: 5 * time.Minute,
		LoginRatePerMinute:   20,
		LoginBurst:           5,
	}

	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	cfg.DatabaseURL = getenv("DATABASE_URL")

	var err error
	if cfg.SessionTTL, err = durationVar(getenv, "SESSION_TTL", cfg.SessionTTL); err != nil {
		return cfg, err
	}
	if cfg.SessionSweepInterval, err = durationVar(getenv, "SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval); err != nil {
		return cfg, err
	}
	if cfg.LoginRatePerMinute, err = positiveIntVar(getenv, "LOGIN_RATE_PER_MINUTE", cfg.LoginRatePerMinute); err != nil {
		return cfg, err
	}
	if cfg.LoginBurst, err = positiveIntVar(getenv, "LOGIN_BURST", cfg.LoginBurst); err != nil {
		return cfg, err
	}

	for _, o := range strings.Split(getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func durationVar(getenv func(string) string, key string, fallback time.Duration) (time.Duration, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback, fmt.Errorf("invalid %s: %s", key, raw)
	}
	return d, nil
}

func positiveIntVar(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback, fmt.Errorf("invalid %s: %s", key, raw)
	}
	return n, nil
}
