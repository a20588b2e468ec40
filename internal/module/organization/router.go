package organization

import (
	"event-submission-system/internal/global/middleware"

	"github.com/gin-gonic/gin"
)

func (o *ModuleOrganization) InitRouter(r *gin.RouterGroup) {
	// 组织相关端点以 /organization 为前缀
	orgGroup := r.Group("/organization")

	orgGroup.GET("/:id", GetOrganization)

	orgGroup.Use(middleware.Auth())
	{
		orgGroup.POST("", CreateOrganization)

		// 成员管理仅限 owner/admin
		orgGroup.POST("/:id/member", SetMember)
		orgGroup.DELETE("/:id/member/:user_id", RemoveMember)
	}
}
