package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonkalabs/termsplain/internal/api"
	"github.com/gonkalabs/termsplain/internal/cache"
	"github.com/gonkalabs/termsplain/internal/config"
	"github.com/gonkalabs/termsplain/internal/flags"
	"github.com/gonkalabs/termsplain/internal/gemini"
	"github.com/gonkalabs/termsplain/internal/redact"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	rules := flags.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = flags.LoadRules(cfg.RulesFile)
		if err != nil {
			slog.Error("rules error", "err", err)
			os.Exit(1)
		}
	}
	if bad := rules.Invalid(); len(bad) > 0 {
		slog.Warn("rules with invalid patterns will match on keywords only", "rules", bad)
	}

	var gen api.Generator
	client, err := gemini.New(gemini.Options{
		BaseURL:           cfg.BaseURL,
		Keys:              cfg.APIKeys,
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.UpstreamRPM,
	})
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		slog.Warn("GEMINI_API_KEY not set, serving static fallbacks")
	case err != nil:
		slog.Error("gemini client error", "err", err)
		os.Exit(1)
	default:
		opts := []gemini.Option{gemini.WithCache(cache.NewMemory(cfg.CacheSize, cfg.CacheTTL))}
		if cfg.RedactEnabled {
			opts = append(opts, gemini.WithRedactor(redact.New(redact.ContactClassifiers()...)))
			slog.Info("redaction enabled")
		}
		gen = gemini.NewGenerator(client, cfg.Model, opts...)
	}

	handler := api.New(rules, gen, api.NewRateLimiter(cfg.RateLimitPerMinute))

	mux := http.NewServeMux()
	handler.Register(mux)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.Wrap(mux, cfg.CORSOrigin),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Timeout*3 + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)

		shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutCancel()

		if err := srv.Shutdown(shutCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("starting termsplain api",
		"addr", cfg.ListenAddr,
		"model", cfg.Model,
		"keys", len(cfg.APIKeys),
		"rules", rules.Len(),
		"rateLimit", cfg.RateLimitPerMinute,
		"redact", cfg.RedactEnabled,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}
