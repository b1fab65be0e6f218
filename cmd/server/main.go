package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/analysis"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/cache"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/central"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/config"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/features"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/handlers"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/middleware"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/model"
	"github.com/AshenDulsanka/PUSL-3190-Phisher/internal/safeurl"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	cfg := config.Load()
	logger := slog.Default()

	store := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	defer store.Close()

	centralClient := central.NewClient(cfg.CentralStoreURL, cfg.CentralStoreAPIKey, logger)

	// Model load failures are non-fatal: the health endpoint reports what is
	// missing and the affected profile returns 503 until artifacts arrive.
	lightweightModel, err := model.Load(cfg.ModelsDir, "lightweight", features.LightweightFeatureNames)
	if err != nil {
		slog.Error("Lightweight model unavailable", "error", err)
	}
	deepModel, err := model.Load(cfg.ModelsDir, "deep", features.DeepFeatureNames)
	if err != nil {
		slog.Error("Deep model unavailable", "error", err)
	}

	guard := safeurl.New()
	extractor := &features.Extractor{
		WHOIS: features.NewWHOISClient(),
		DNS:   features.NewDNSClient(),
		HTML:  features.NewHTMLClient(guard),
	}

	service := analysis.New(analysis.Config{
		Guard:            guard,
		Extractor:        extractor,
		Cache:            store,
		Central:          centralClient,
		LightweightModel: lightweightModel,
		DeepModel:        deepModel,
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go central.NewSyncer(store, centralClient, logger).Run(ctx)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(gzip.Gzip(gzip.DefaultCompression))
	router.Use(middleware.RequestContext())

	rateLimiter := middleware.NewInMemoryRateLimiter(cfg.RateLimitPerMinute)
	slog.Info("Rate limiter initialized", "backend", "in-memory", "max_per_minute", cfg.RateLimitPerMinute)

	analyzeHandler := handlers.NewAnalyzeHandler(service)
	feedbackHandler := handlers.NewFeedbackHandler(service)
	healthHandler := handlers.NewHealthHandler(service, store, cfg.AppVersion)

	router.GET("/health", healthHandler.HealthCheck)

	api := router.Group("/api", middleware.APIKey(cfg.APIKey), middleware.RateLimit(rateLimiter))
	api.POST("/analyze-url", analyzeHandler.AnalyzeURL)
	api.POST("/deep-analyze-url", analyzeHandler.DeepAnalyzeURL)
	api.POST("/feedback", feedbackHandler.SubmitFeedback)

	addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
	slog.Info("Starting phishing analysis server", "address", addr, "version", cfg.AppVersion)

	if err := router.Run(addr); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}
