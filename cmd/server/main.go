package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/classifier"
	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/httpserver"
	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/metrics"
	"github.com/bertygi/HibiLog-EmotionScore/internal/adapter/tokenizer"
	"github.com/bertygi/HibiLog-EmotionScore/internal/app"
	"github.com/bertygi/HibiLog-EmotionScore/internal/emoji"
	"github.com/bertygi/HibiLog-EmotionScore/internal/fusion"
	"github.com/bertygi/HibiLog-EmotionScore/internal/inference"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/config"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/logging"
	"github.com/bertygi/HibiLog-EmotionScore/internal/platform/version"
)

const (
	classifierLoadTimeout = 60 * time.Second
	cacheEvictionInterval = time.Minute
	shutdownTimeout       = 10 * time.Second
)

func runGracefulShutdown(srv *httpserver.Server, stopEviction func()) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		stopEviction()

		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupPriors(cfg *config.Config) *emoji.Table {
	priors, err := emoji.LoadFile(cfg.EmojiPriorsFile)
	if err != nil {
		slog.Error("Failed to load emoji priors", "error", err)
		os.Exit(1)
	}
	slog.Info("Emoji priors loaded", "entries", priors.Len(), "file", cfg.EmojiPriorsFile)
	return priors
}

func setupTokenizer(cfg *config.Config) *tokenizer.Tokenizer {
	tok, err := tokenizer.Load(cfg.TokenizerEncoding)
	if err != nil {
		slog.Error("Failed to load tokenizer", "error", err)
		os.Exit(1)
	}
	return tok
}

func setupClassifier(cfg *config.Config, clock clockwork.Clock, observer classifier.BreakerObserver) *classifier.Client {
	ctx, cancel := context.WithTimeout(context.Background(), classifierLoadTimeout)
	defer cancel()

	client, err := classifier.Load(ctx, classifier.Config{
		BaseURL:     cfg.ClassifierURL,
		Timeout:     cfg.ClassifierTimeout,
		MaxAttempts: cfg.ClassifierMaxAttempts,
		Clock:       clock,
		Observer:    observer,
	})
	if err != nil {
		slog.Error("Failed to load emotion classifier", "url", cfg.ClassifierURL, "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().String())

	registry := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	scoringMetrics := metrics.NewScoringMetrics(registry)
	cacheMetrics := metrics.NewCacheMetrics(registry)
	breakerMetrics := metrics.NewBreakerMetrics(registry)

	priors := setupPriors(cfg)
	tok := setupTokenizer(cfg)
	client := setupClassifier(cfg, clock, breakerMetrics)

	cache := inference.NewCache(cfg.InferenceCacheTTL, cfg.InferenceCacheMaxEntries, clock, cacheMetrics)
	stopEviction := cache.StartEvictionTimer(cacheEvictionInterval)

	inferer, err := inference.NewAdapter(client, tok,
		inference.WithMaxTokens(cfg.MaxTokens),
		inference.WithCache(cache),
	)
	if err != nil {
		slog.Error("Failed to create inference adapter", "error", err)
		os.Exit(1)
	}

	engine, err := fusion.NewEngine(priors, fusion.Params{
		Alpha:              cfg.FusionAlpha,
		Beta:               cfg.FusionBeta,
		AnticipationWeight: cfg.AnticipationWeight,
		Epsilon:            fusion.DefaultEpsilon,
	})
	if err != nil {
		slog.Error("Failed to create fusion engine", "error", err)
		os.Exit(1)
	}

	appSvc := app.NewService(inferer, engine, priors, clock, scoringMetrics)

	healthChecks := []httpserver.HealthCheck{
		{Name: "classifier", Check: client.Check},
	}

	srv := httpserver.NewServer(cfg, appSvc, healthChecks, httpMetrics, metrics.Handler(registry))

	done := runGracefulShutdown(srv, stopEviction)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
