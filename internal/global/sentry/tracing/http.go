package tracing

import (
	"context"
	"net/url"

	"event-submission-system/config"

	"github.com/getsentry/sentry-go"
	"github.com/go-resty/resty/v2"
)

// ActionHeader 由 notify 在 webhook 请求上设置，span 按动作打标签
const ActionHeader = "X-Webhook-Action"

// restySpanKey 只取本包创建的 span，避免误结束请求本身的 transaction
type restySpanKey struct{}

func restySpan(ctx context.Context) *sentry.Span {
	if ctx == nil {
		return nil
	}
	span, _ := ctx.Value(restySpanKey{}).(*sentry.Span)
	return span
}

// SetupRestyTracing 为 webhook 推送建 span，并透传 sentry-trace 头
func SetupRestyTracing(client *resty.Client) {
	if !config.Get().Sentry.Tracing.TraceHTTPCalls {
		return
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		target := sanitizeURL(req.URL)
		span := startChild(req.Context(), "http.client", req.Method+" "+target)
		if span == nil {
			return nil
		}
		span.SetData("http.request.method", req.Method)
		span.SetData("url.full", target)
		if action := req.Header.Get(ActionHeader); action != "" {
			span.SetTag("webhook.action", action)
		}
		req.SetHeader("sentry-trace", span.ToSentryTrace())
		if baggage := span.ToBaggage(); baggage != "" {
			req.SetHeader("baggage", baggage)
		}
		req.SetContext(context.WithValue(span.Context(), restySpanKey{}, span))
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		span := restySpan(resp.Request.Context())
		if span == nil {
			return nil
		}
		span.SetData("http.response.status_code", resp.StatusCode())
		if resp.IsError() {
			span.Status = sentry.HTTPtoSpanStatus(resp.StatusCode())
		} else {
			span.Status = sentry.SpanStatusOK
		}
		span.Finish()
		return nil
	})

	client.OnError(func(req *resty.Request, err error) {
		if req == nil {
			return
		}
		if span := restySpan(req.Context()); span != nil {
			finish(span, 0, 0, err)
		}
	})
}

// sanitizeURL 只保留 scheme://host/path，webhook 地址的查询参数里常带签名
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Scheme + "://" + u.Host + u.Path
}
