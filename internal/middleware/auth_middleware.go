package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"shortlink-service/constant"
	"shortlink-service/internal/apperrors"
)

// TokenIntrospector 令牌校验接口，实现见 service.AuthService
type TokenIntrospector interface {
	IntrospectToken(ctx context.Context, token string) (string, error)
}

// AuthMiddleware 认证中间件
// 校验 Authorization 头中的访问令牌，通过后把用户邮箱写入请求上下文
func AuthMiddleware(auth TokenIntrospector) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			_ = c.Error(apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		email, err := auth.IntrospectToken(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(constant.RequesterEmailKey, email)
		c.Next()
	}
}
