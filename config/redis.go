package config

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RedisClient *redis.Client

func ConnectRedis() {
	redisURL := getEnv("REDIS_URL", "")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
		Logger.Warn("REDIS_URL not set, using local Redis", zap.String("url", redisURL))
	}

	ctx, cancel := WithTimeout()
	defer cancel()

	client, err := openRedis(ctx, redisURL)
	if err != nil {
		Logger.Fatal("failed to connect to Redis", zap.Error(err))
	}
	RedisClient = client
	Logger.Info("connected to Redis")
}

// openRedis parses redisURL and pings the server once.
func openRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func CloseRedis() {
	if RedisClient != nil {
		_ = RedisClient.Close()
	}
}
