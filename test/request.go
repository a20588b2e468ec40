package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// Request 描述一次测试请求；UserID 为 0 表示匿名
type Request struct {
	Method string
	Path   string // 路由模板，如 /submission/:id
	URL    string // 实际地址，如 /submission/3?private=true
	Body   any
	UserID uint
}

// Serve 用最小路由执行 handler，返回原始 recorder
func Serve(t *testing.T, handler gin.HandlerFunc, req Request) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if req.Method == "" {
		req.Method = http.MethodPost
	}
	if req.Path == "" {
		req.Path = "/test"
	}
	if req.URL == "" {
		req.URL = req.Path
	}

	var body *bytes.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	r := gin.New()
	r.Handle(req.Method, req.Path, func(c *gin.Context) {
		if req.UserID != 0 {
			c.Set(jwt.PayloadKey, &jwt.Claims{Payload: jwt.Payload{UserID: req.UserID}})
		}
		c.Next()
	}, handler)

	w := httptest.NewRecorder()
	httpReq := httptest.NewRequest(req.Method, req.URL, body)
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

// DoRequest 执行请求并解码统一响应体
func DoRequest(t *testing.T, handler gin.HandlerFunc, req Request) (resp response.ResponseBody) {
	t.Helper()
	w := Serve(t, handler, req)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// DecodeData 将响应中的 data 重新解码为具体类型
func DecodeData(t *testing.T, resp response.ResponseBody, dst any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}
