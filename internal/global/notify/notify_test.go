package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-submission-system/config"
	"event-submission-system/internal/global/httpclient"
	"event-submission-system/internal/global/sentry/tracing"

	"github.com/stretchr/testify/require"
)

func TestSendPostsEvent(t *testing.T) {
	received := make(chan Event, 1)
	actions := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		actions <- r.Header.Get(tracing.ActionHeader)
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Notify.WebhookURL = srv.URL
	config.Set(cfg)
	httpclient.Init()

	Send(context.Background(), Event{Action: SubmissionCreated, EventID: 1, SubmissionID: 2})

	got := <-received
	require.Equal(t, SubmissionCreated, got.Action)
	require.Equal(t, uint(2), got.SubmissionID)
	require.False(t, got.OccurredAt.IsZero())
	require.Equal(t, string(SubmissionCreated), <-actions)
}

func TestSendWithoutWebhookIsNoop(t *testing.T) {
	config.Set(config.Default())
	httpclient.Init()
	Send(context.Background(), Event{Action: SubmissionDeleted})
}
