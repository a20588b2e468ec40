package httpclient

import (
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/logger"
	"event-submission-system/internal/global/sentry/tracing"

	"github.com/go-resty/resty/v2"
)

var Client *resty.Client

func Init() {
	timeout := time.Duration(config.Get().Notify.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	Client = resty.New().
		SetTimeout(timeout).
		SetRetryCount(1).
		SetHeader("User-Agent", logger.AppName)

	if tracing.IsEnabled() {
		tracing.SetupRestyTracing(Client)
	}
}
