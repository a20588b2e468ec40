package tracing

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"event-submission-system/config"

	"github.com/redis/go-redis/v9"
)

// RedisSentryHook 追踪活动表单缓存的读写；缓存不使用 pipeline
type RedisSentryHook struct {
	slowThreshold time.Duration
}

func NewRedisSentryHook() *RedisSentryHook {
	ms := config.Get().Sentry.Tracing.RedisSlowThresholdMs
	return &RedisSentryHook{slowThreshold: time.Duration(ms) * time.Millisecond}
}

func (h *RedisSentryHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *RedisSentryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		name := strings.ToUpper(cmd.Name())
		prefix := keyPrefix(cmd)
		span := startChild(ctx, "cache."+strings.ToLower(name), name+" "+prefix)
		if span == nil {
			return next(ctx, cmd)
		}
		span.SetData("db.system", "redis")
		span.SetData("cache.key_prefix", prefix)

		start := time.Now()
		err := next(span.Context(), cmd)
		if name == "GET" {
			span.SetData("cache.hit", err == nil)
		}
		traced := err
		if errors.Is(err, redis.Nil) {
			traced = nil
		}
		finish(span, time.Since(start), h.slowThreshold, traced)
		return err
	}
}

func (h *RedisSentryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

// keyPrefix "event:12" -> "event"，去掉 ID 避免高基数
func keyPrefix(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return ""
	}
	key, ok := args[1].(string)
	if !ok {
		return ""
	}
	prefix, _, _ := strings.Cut(key, ":")
	return prefix
}
