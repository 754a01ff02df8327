package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inspectpozo/core-go/internal/auth"
	"inspectpozo/core-go/internal/config"
	"inspectpozo/core-go/internal/db"
	"inspectpozo/core-go/internal/httpapi"
	"inspectpozo/core-go/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	logger := httpapi.NewLoggerWithFormat(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		p, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		pool = p
	} else {
		logger.Warn().Msg("DATABASE_URL not set; data routes will answer 503")
	}

	m := metrics.New()
	sessions := auth.NewMemoryStore(logger, cfg.SessionTTL, m)
	go sessions.Run(ctx, cfg.SessionSweepInterval)

	h := httpapi.NewHandler(logger, pool, httpapi.Options{
		Sessions:           sessions,
		Metrics:            m,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		LoginBurst:         cfg.LoginBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.Handle("/", h.Router())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("inspectpozo listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}
