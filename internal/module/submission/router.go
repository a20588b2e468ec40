package submission

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (*ModuleSubmission) InitRouter(r *gin.RouterGroup) {
	eventGroup := r.Group("/event/:id/submissions")
	{
		eventGroup.GET("", middleware.OptionalAuth(), ListSubmissions)
		eventGroup.POST("", middleware.Auth(), CreateSubmission)
		eventGroup.GET("/export", middleware.Auth(), ExportSubmissions)
	}

	submissionGroup := r.Group("/submission")
	{
		submissionGroup.GET("/:id", middleware.OptionalAuth(), GetSubmission)
	}
	authGroup := submissionGroup.Group("")
	authGroup.Use(middleware.Auth())
	{
		authGroup.PUT("/:id", UpdateSubmission)
		authGroup.DELETE("/:id", DeleteSubmission)
		authGroup.PUT("/:id/review", ReviewSubmission)
		authGroup.POST("/attachment/presign", PresignAttachment)
	}
}
