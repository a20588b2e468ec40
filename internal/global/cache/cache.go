// Package cache 基于 Redis 的 JSON 读穿缓存；Redis 不可用时直接回源
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"event-submission-system/internal/global/logger"
	globalredis "event-submission-system/internal/global/redis"

	"github.com/redis/go-redis/v9"
)

var log *slog.Logger

func getLog() *slog.Logger {
	if log == nil {
		log = logger.New("Cache")
	}
	return log
}

// Fetch 命中缓存则解码到 dst，否则调用 load 回源并写回缓存
func Fetch[T any](ctx context.Context, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	client := globalredis.RedisClient
	if client == nil {
		return load()
	}

	var cached T
	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		getLog().Warn("缓存数据解码失败，回源", "key", key)
	case !errors.Is(err, redis.Nil):
		getLog().Warn("读取缓存失败，回源", "key", key, "error", err)
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	if data, err := json.Marshal(value); err == nil {
		if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
			getLog().Warn("写入缓存失败", "key", key, "error", err)
		}
	}
	return value, nil
}

// Invalidate 删除缓存键，失败只记日志
func Invalidate(ctx context.Context, keys ...string) {
	client := globalredis.RedisClient
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		getLog().Warn("删除缓存失败", "keys", keys, "error", err)
	}
}
