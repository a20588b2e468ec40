package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"event-submission-system/config"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// AppName 写入每条日志，也作为 webhook 请求的 User-Agent
const AppName = "event-submission-system"

var (
	instance *slog.Logger
	once     sync.Once
)

// sensitiveKeys 参赛者的联系方式和凭据不落日志，也不随 Warn/Error 上报到 Sentry
var sensitiveKeys = map[string]bool{
	"password": true,
	"token":    true,
	"email":    true,
	"phone":    true,
	"we_chat":  true,
	"contact":  true,
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "[redacted]")
	}
	return a
}

// fanout 把同一条记录交给每个启用了该级别的 handler
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// newHandler release 模式写 JSON 到轮转文件，否则写文本到 stdout；配置了 DSN 时同时上报 Sentry
func newHandler(cfg *config.Config) slog.Handler {
	release := cfg.Mode == config.ModeRelease
	opts := &slog.HandlerOptions{
		AddSource:   release,
		Level:       parseLevel(cfg.Log.Level),
		ReplaceAttr: redact,
	}

	var handler slog.Handler
	if release && cfg.Log.FilePath != "" {
		handler = slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   cfg.Log.FilePath,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		}, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	if cfg.Sentry.Dsn == "" {
		return handler
	}

	sentryHandler := sentryslog.Option{
		EventLevel:  []slog.Level{slog.LevelError},
		LogLevel:    []slog.Level{slog.LevelWarn, slog.LevelError},
		AddSource:   release,
		ReplaceAttr: redact,
	}.NewSentryHandler(context.Background())
	return fanout{handler, sentryHandler}
}

func Get() *slog.Logger {
	once.Do(func() {
		cfg := config.Get()
		instance = slog.New(newHandler(cfg)).With(
			"app_name", AppName,
			"env", string(cfg.Mode),
		)
	})
	return instance
}

// New 带 module 字段的子 Logger，每个业务模块在 Init 时取一个
func New(module string) *slog.Logger {
	return Get().With("module", module)
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
