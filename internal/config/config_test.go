package config

import (
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":8081" || cfg.LogLevel != "info" || cfg.LogFormat != "json" || cfg.DatabaseURL != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionTTL != 12*time.Hour || cfg.SessionSweepInterval != 5*time.Minute {
		t.Fatalf("unexpected session defaults: %+v", cfg)
	}
	if cfg.LoginRatePerMinute != 20 || cfg.LoginBurst != 5 {
		t.Fatalf("unexpected login limiter defaults: %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := fromEnv(envMap(map[string]string{
		"HTTP_ADDR":              ":9000",
		"LOG_LEVEL":              "debug",
		"LOG_FORMAT":             "console",
		"DATABASE_URL":           "postgres://localhost/inspectpozo",
		"SESSION_TTL":            "30m",
		"SESSION_SWEEP_INTERVAL": "10s",
		"LOGIN_RATE_PER_MINUTE":  "60",
		"LOGIN_BURST":            "10",
		"CORS_ALLOWED_ORIGINS":   " http://localhost:5173, ,https://mapa.example.org ",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddr != ":9000" || cfg.LogLevel != "debug" || cfg.LogFormat != "console" || cfg.DatabaseURL == "" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.SessionSweepInterval != 10*time.Second {
		t.Fatalf("durations not applied: %+v", cfg)
	}
	if cfg.LoginRatePerMinute != 60 || cfg.LoginBurst != 10 {
		t.Fatalf("limiter not applied: %+v", cfg)
	}
	want := []string{"http://localhost:5173", "https://mapa.example.org"}
	if len(cfg.CORSAllowedOrigins) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.CORSAllowedOrigins)
	}
	for i := range want {
		if cfg.CORSAllowedOrigins[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.CORSAllowedOrigins)
		}
	}
}

func TestFromEnv_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"SESSION_TTL":            "forever",
		"SESSION_SWEEP_INTERVAL": "-1m",
		"LOGIN_RATE_PER_MINUTE":  "0",
		"LOGIN_BURST":            "many",
	}
	for key, val := range cases {
		if _, err := fromEnv(envMap(map[string]string{key: val})); err == nil {
			t.Fatalf("expected error for %s=%q", key, val)
		}
	}
}
