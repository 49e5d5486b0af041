package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/storeapi/config"
)

// NewRedis returns a Redis client for the configured address, or nil when Redis is not configured.
func NewRedis(cfg *config.AppConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		Sugar.Warnf("redis ping %s failed, revocation checks will fail open: %v", cfg.RedisAddr, err)
	}
	return rc
}
