package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/api/handlers"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/config"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/database"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/events"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/health"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/insights"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/middleware"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/migration"
	"github.com/ns-adiraghavan/adas-compassiq/backend/internal/repository"
	"github.com/ns-adiraghavan/adas-compassiq/backend/pkg/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateOpenAI(); err != nil {
		log.Fatalf("OpenAI configuration validation failed: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	logger.Info("Starting insights API...")

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    cfg.Log.Level,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := migration.NewRunner(dbManager, logger).RunMigrations(envOr("MIGRATIONS_PATH", "migrations")); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	sharedCache := database.NewCache(dbManager.Redis, cfg.Insights.SharedCacheTTL, logger)

	generator := insights.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, logger).
		WithTimeout(cfg.OpenAI.Timeout)
	retriever := insights.NewFeedbackRetriever(repoManager.InsightFeedback, cfg.Insights.FeedbackLimit, logger)

	opts := []insights.Option{insights.WithSharedStore(sharedCache)}
	checks := []health.Check{
		{Name: "postgresql", Ping: dbManager.PingDatabase},
		{Name: "redis", Ping: dbManager.PingRedis},
		{Name: "openai", Ping: generator.Ping, Optional: true},
	}

	if cfg.NATS.URL != "" {
		publisher, err := events.Connect(cfg.NATS.URL, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, insight events disabled")
		} else {
			defer publisher.Close()
			opts = append(opts, insights.WithNotifier(publisher))
			checks = append(checks, health.Check{Name: "nats", Ping: publisher.Ping, Optional: true})
		}
	}

	service := insights.NewService(insights.NewCache(cfg.Insights.CacheCapacity, logger), retriever, generator, logger, opts...)
	checker := health.NewHealthChecker(checks, sharedCache, repoManager.SystemHealth, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute)
	go rateLimiter.Run(ctx, time.Minute)
	go checker.PeriodicHealthCheck(ctx, 30*time.Second)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.SecurityHeaders())

	healthHandler := handlers.NewHealthHandler(checker, service.Cache(), sharedCache)
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/health/cached", healthHandler.HandleCachedHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", rateLimiter.RateLimit())
	handlers.NewInsightsHandler(service, repoManager.InsightFeedback, retriever, logger).Register(api)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
