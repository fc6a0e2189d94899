// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"sparkathon/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// AuthCacheClient is the dedicated client for identity sessions.
var AuthCacheClient *redis.Client

// InitAuthCache initializes the Redis client backing identity sessions (REDIS_AUTH_DB).
func InitAuthCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (Auth Cache): %w", err)
	}
	AuthCacheClient = client
	return nil
}

// GetAuthCacheClient returns the Redis client for identity sessions, or nil
// when it has not been initialized.
func GetAuthCacheClient() *redis.Client {
	return AuthCacheClient
}

// RecommendationCacheClient caches model-generated recommendation batches.
var RecommendationCacheClient *redis.Client

// InitRecommendationCache initializes the Redis client for recommendation batches (REDIS_CACHE_DB).
func InitRecommendationCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (Recommendation Cache): %w", err)
	}
	RecommendationCacheClient = client
	return nil
}

// QueueRedisOpt returns the asynq connection options for the confirmation queue (REDIS_QUEUE_DB).
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}
