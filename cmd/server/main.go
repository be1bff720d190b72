package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/juman-j/book-recommender/internal/cache"
	"github.com/juman-j/book-recommender/internal/config"
	"github.com/juman-j/book-recommender/internal/dataset"
	"github.com/juman-j/book-recommender/internal/handlers"
	"github.com/juman-j/book-recommender/internal/logger"
	"github.com/juman-j/book-recommender/internal/metrics"
	"github.com/juman-j/book-recommender/internal/middleware"
	"github.com/juman-j/book-recommender/internal/service"
	"github.com/juman-j/book-recommender/internal/storage"
	"github.com/juman-j/book-recommender/internal/telemetry"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(logger.Options{Level: settings.LogLevel, File: settings.LogFile}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Close() }()

	if envErr != nil {
		logger.Log.Info("No .env file found, using system environment variables")
	}
	if settings.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Initialize()

	ctx := context.Background()
	tp, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  settings.Environment,
		OTLPEndpoint: settings.OTelEndpoint,
		Enabled:      settings.OTelEnabled,
		SamplingRate: settings.OTelSamplingRate,

		RatingsSource: settings.RatingsPath,
		BooksSource:   settings.BooksPath,
		MainURL:       settings.MainURL,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	}

	// Sources are resolved once; every request re-reads them.
	resolver := storage.NewResolver(settings.AWSRegion)
	ratings, err := resolver.Source(ctx, settings.RatingsPath)
	if err != nil {
		logger.FatalWithFields("Failed to resolve ratings source", err)
	}
	books, err := resolver.Source(ctx, settings.BooksPath)
	if err != nil {
		logger.FatalWithFields("Failed to resolve books source", err)
	}
	svc := service.NewRecommendationService(dataset.NewLoader(), ratings, books)

	tmpl, err := handlers.LoadTemplates(settings.TemplateDir)
	if err != nil {
		logger.FatalWithFields("Failed to load templates", err)
	}

	deps := routerDeps{Settings: settings, Recommender: svc, Templates: tmpl}

	// Redis is optional; the API works uncached without it.
	if settings.CacheEnabled() {
		redisClient, err := cache.NewRedisClient(ctx, settings.RedisHost, settings.RedisPort, settings.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Response cache disabled", err)
		} else {
			defer func() { _ = redisClient.Close() }()
			deps.Store = redisClient
		}
	}

	if settings.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			Rate:    settings.RateLimit,
			Burst:   settings.RateBurst,
			IdleTTL: time.Hour,
		})
		defer limiter.Stop()
		deps.Limiter = limiter
	}

	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           setupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Book recommender starting",
			zap.String("port", settings.Port),
			zap.String("main_url", settings.MainURL),
			zap.String("ratings", ratings.Name()),
			zap.String("books", books.Name()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.WarnWithFields("Failed to flush traces", err)
		}
	}

	logger.Log.Info("Server exited")
}
