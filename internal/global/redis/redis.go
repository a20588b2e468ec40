package redis

import (
	"context"
	"net"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/logger"
	"event-submission-system/internal/global/sentry/tracing"

	"github.com/redis/go-redis/v9"
)

// RedisClient 未配置 Redis 时为 nil，调用方需自行降级
var RedisClient *redis.Client

func Init() {
	cfg := config.Get().Redis
	if cfg.Host == "" {
		logger.New("Redis").Warn("未配置 Redis，表单缓存关闭")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if tracing.IsEnabled() {
		client.AddHook(tracing.NewRedisSentryHook())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.New("Redis").Error("Redis 连接失败，表单缓存关闭", "error", err)
		_ = client.Close()
		return
	}
	RedisClient = client
}
