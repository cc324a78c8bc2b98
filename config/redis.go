package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/gourmet-house/utils"
)

// NewRedisClient returns nil when Redis is not configured or not reachable;
// callers then fall back to in-memory rate limiting and no response cache.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		utils.ErrorLogger.Warnf("Redis at %s unavailable, continuing without it: %v", cfg.Addr, err)
		_ = client.Close()
		return nil
	}
	utils.InfoLogger.Printf("Connected to Redis at %s", cfg.Addr)
	return client
}
