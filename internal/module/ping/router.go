package ping

import (
	"event-submission-system/config"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/global/sentry"

	"github.com/gin-gonic/gin"
)

func (p *ModulePing) InitRouter(r *gin.RouterGroup) {
	r.GET("/ping", Ping)
}

func Ping(c *gin.Context) {
	response.Success(c, map[string]any{
		"message": "pong",
		"version": sentry.Version,
		"mode":    config.Get().Mode,
	})
}
