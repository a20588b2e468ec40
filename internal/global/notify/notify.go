// Package notify 在投稿变更后向主办方配置的 webhook 推送事件
package notify

import (
	"context"
	"log/slog"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/httpclient"
	"event-submission-system/internal/global/logger"
	"event-submission-system/internal/global/sentry/tracing"
)

type Action string

const (
	SubmissionCreated  Action = "submission.created"
	SubmissionUpdated  Action = "submission.updated"
	SubmissionDeleted  Action = "submission.deleted"
	SubmissionReviewed Action = "submission.reviewed"
)

type Event struct {
	Action       Action    `json:"action"`
	EventID      uint      `json:"event_id"`
	SubmissionID uint      `json:"submission_id"`
	ProjectID    uint      `json:"project_id"`
	ActorID      uint      `json:"actor_id"`
	Status       string    `json:"status,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

var log *slog.Logger

func getLog() *slog.Logger {
	if log == nil {
		log = logger.New("Notify")
	}
	return log
}

// Send 同步推送，失败只记日志，不影响已提交的事务
func Send(ctx context.Context, e Event) {
	url := config.Get().Notify.WebhookURL
	if url == "" || httpclient.Client == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	resp, err := httpclient.Client.R().
		SetContext(ctx).
		SetHeader(tracing.ActionHeader, string(e.Action)).
		SetBody(e).
		Post(url)
	if err != nil {
		getLog().Warn("webhook 推送失败", "error", err, "action", e.Action, "submission_id", e.SubmissionID)
		return
	}
	if resp.IsError() {
		getLog().Warn("webhook 返回异常状态", "status", resp.StatusCode(), "action", e.Action, "submission_id", e.SubmissionID)
	}
}
