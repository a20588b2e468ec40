package ping

import (
	"net/http"
	"testing"

	"event-submission-system/config"
	"event-submission-system/test"

	"github.com/stretchr/testify/assert"
)

func TestPing(t *testing.T) {
	config.Set(config.Default())
	resp := test.DoRequest(t, Ping, test.Request{Method: http.MethodGet, Path: "/ping"})
	test.NoError(t, resp)

	var out map[string]string
	test.DecodeData(t, resp, &out)
	assert.Equal(t, "pong", out["message"])
	assert.Equal(t, "1.0.0", out["version"])
	assert.Equal(t, string(config.ModeDebug), out["mode"])
}
