package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient creates a new Redis client and checks the connection.
func NewRedisClient(ctx context.Context, cfg *config.Config, log *slog.Logger) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// REDIS_URL wins when set
	if cfg.RedisURL != "" {
		parsedOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		if parsedOpts.Password == "" {
			parsedOpts.Password = cfg.RedisPassword
		}
		opts = parsedOpts
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("successfully connected to Redis", "addr", opts.Addr)
	return client, nil
}
