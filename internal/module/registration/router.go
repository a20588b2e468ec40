package registration

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (p *ModuleRegistration) InitRouter(r *gin.RouterGroup) {
	regGroup := r.Group("/event/:id/registration")
	regGroup.Use(middleware.Auth())
	{
		// 参与者自己的报名
		regGroup.POST("", Register)
		regGroup.DELETE("", Cancel)
		regGroup.GET("/mine", Mine)

		// 活动管理员
		regGroup.GET("", List)
		regGroup.PUT("/:user_id", Review)
	}
}
