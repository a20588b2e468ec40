package middleware

import (
	"strings"

	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// Auth 要求请求携带有效的 Bearer token
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Fail(c, response.ErrUnauthorized)
			return
		}
		payload, valid := jwt.ParseToken(token)
		if !valid {
			response.Fail(c, response.ErrTokenInvalid)
			return
		}
		c.Set(jwt.PayloadKey, payload)
		c.Next()
	}
}

// OptionalAuth 有 token 就解析，没有或无效时按匿名用户处理
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if payload, valid := jwt.ParseToken(token); valid {
				c.Set(jwt.PayloadKey, payload)
			}
		}
		c.Next()
	}
}
