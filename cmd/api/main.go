package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
	"github.com/pageza/recipe-catalog/backend/internal/router"
	"github.com/pageza/recipe-catalog/backend/internal/server"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Info("starting recipe catalog", "environment", cfg.Environment, "driver", cfg.DBDriver)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := database.Bootstrap(db, cfg, logger); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.RateLimitPerHour > 0 {
		redisClient, err = database.NewRedisClient(ctx, cfg, logger)
		if err != nil {
			logger.Warn("redis unavailable, rate limiting falls back to in-process buckets", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	gw := store.NewGateway(db,
		store.WithNutritionTable(store.NutritionRow{}.TableName()),
		store.WithLogger(logger),
	)
	recipeHandler := api.NewRecipeHandler(service.NewRecipeService(gw), logger)

	opts := router.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Health:         healthCheck(db),
	}
	if cfg.RateLimitPerHour > 0 {
		opts.RateLimiter = middleware.NewWriteRateLimiter(redisClient, cfg.RateLimitPerHour, logger)
	}

	srv := server.New(cfg.Addr(), router.SetupRouter(recipeHandler, opts), logger)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
		return nil
	case sig := <-quit:
		logger.Info("received signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func healthCheck(db *gorm.DB) api.HealthChecker {
	return func(ctx context.Context) error {
		return database.HealthCheck(ctx, db)
	}
}
