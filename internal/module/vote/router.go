package vote

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleVote) InitRouter(r *gin.RouterGroup) {
	submissionGroup := r.Group("/submission/:id")
	submissionGroup.Use(middleware.Auth())
	{
		submissionGroup.POST("/vote", Cast)
		submissionGroup.DELETE("/vote", Revoke)
		submissionGroup.PUT("/vote-count", Override)
	}

	eventGroup := r.Group("/event/:id/votes")
	{
		eventGroup.GET("/stats", middleware.OptionalAuth(), GetStats)
		eventGroup.GET("/stats/export", middleware.Auth(), ExportStats)
		eventGroup.GET("/mine", middleware.Auth(), Mine)
	}
}
