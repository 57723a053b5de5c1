package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foxfund/foxfund-go/internal/config"
	"github.com/foxfund/foxfund-go/internal/domain"
	"github.com/foxfund/foxfund-go/internal/handler"
	"github.com/foxfund/foxfund-go/internal/infra/cache"
	"github.com/foxfund/foxfund-go/internal/infra/observability"
	"github.com/foxfund/foxfund-go/internal/infra/postgres"
	"github.com/foxfund/foxfund-go/internal/infra/rates"
	"github.com/foxfund/foxfund-go/internal/infra/resilience"
	"github.com/foxfund/foxfund-go/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "foxfund-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Database ---
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	// --- Exchange rates client ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	ratesClient := rates.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.RatesAPIURL,
		resilience.NewCircuitBreaker("rates"),
		resilienceCfg,
		cache.New[domain.ExchangeRate](cfg.CacheTTL),
		metrics,
	)

	// --- Services ---
	authSvc := service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, metrics, logger)
	svcs := handler.Services{
		Auth:          authSvc,
		Transactions:  service.NewTransactionService(store, metrics, logger),
		Categories:    service.NewCategoryService(store, metrics, logger),
		Budgets:       service.NewBudgetService(store, metrics, logger),
		Goals:         service.NewGoalService(store, metrics, logger),
		Notifications: service.NewNotificationService(store, metrics, logger),
		Users:         service.NewUserService(store, logger),
		Dashboard:     service.NewDashboardService(store, metrics, logger),
		CSV:           service.NewCSVService(store, metrics, logger),
		Rates:         ratesClient,
		Store:         store,
	}

	// --- Router ---
	router := handler.NewRouter(svcs, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
