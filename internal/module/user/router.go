package user

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

// InitRouter 用户相关端点以 /user 为前缀
func (u *ModuleUser) InitRouter(r *gin.RouterGroup) {
	userGroup := r.Group("/user")

	userGroup.POST("/register", Register)
	userGroup.POST("/login", Login)

	meGroup := userGroup.Group("/me", middleware.Auth())
	{
		meGroup.GET("", GetMe)
		meGroup.PUT("", UpdateMe)
	}
}
