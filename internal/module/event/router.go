package event

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (p *ModuleEvent) InitRouter(r *gin.RouterGroup) {
	// 活动相关端点以 /event 为前缀，投稿、投票、报名挂在 /event/:id 下由各自模块注册
	eventGroup := r.Group("/event")

	eventGroup.GET("", ListEvents)
	eventGroup.GET("/:id", GetEvent)

	eventGroup.Use(middleware.Auth())
	{
		eventGroup.POST("", CreateEvent)
		eventGroup.PUT("/:id", UpdateEvent)
		eventGroup.PUT("/:id/form", UpdateForm)
	}
}
