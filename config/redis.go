package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is nil when REDIS_ADDR is empty or the server did not answer a ping.
var Redis *redis.Client

func InitRedis() {
	if AppConfig.RedisAddr == "" {
		Log.Info().Msg("REDIS_ADDR not set, stats caching disabled")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     AppConfig.RedisAddr,
		Password: AppConfig.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		Log.Warn().Err(err).Str("addr", AppConfig.RedisAddr).Msg("Failed to connect to Redis, stats caching disabled")
		_ = client.Close()
		return
	}

	Redis = client
	Log.Info().Str("addr", AppConfig.RedisAddr).Msg("Connected to Redis successfully")
}
