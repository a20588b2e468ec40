// Package tracing 把数据库、表单缓存和 webhook 调用挂到当前请求的 Sentry transaction 下
package tracing

import (
	"context"
	"time"

	"event-submission-system/config"

	"github.com/getsentry/sentry-go"
)

func IsEnabled() bool {
	return config.Get().Sentry.Dsn != ""
}

// startChild 没有父 span 时返回 nil，调用方直接跳过
func startChild(ctx context.Context, op, description string) *sentry.Span {
	if ctx == nil {
		return nil
	}
	parent := sentry.SpanFromContext(ctx)
	if parent == nil {
		return nil
	}
	span := parent.StartChild(op)
	span.Description = description
	return span
}

// finish 耗时低于 threshold 的 span 不上报
func finish(span *sentry.Span, elapsed, threshold time.Duration, err error) {
	if threshold > 0 && elapsed < threshold {
		span.Sampled = sentry.SampledFalse
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
	} else {
		span.Status = sentry.SpanStatusOK
	}
	span.Finish()
}

// Trace 在 ctx 的 span 下执行 fn，fn 内的 SQL 会成为它的子 span。
// 投票、撤票这类整段事务用它计时，业务拒绝不算错误，fn 只应返回基础设施故障
func Trace(ctx context.Context, op, description string, fn func(context.Context) error) error {
	span := startChild(ctx, op, description)
	if span == nil {
		return fn(ctx)
	}
	start := time.Now()
	err := fn(span.Context())
	finish(span, time.Since(start), 0, err)
	return err
}
