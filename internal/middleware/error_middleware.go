package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/i18n"
	"shortlink-service/response"
)

// GlobalErrorMiddleware 全局错误中间件
// 收集 handler 通过 c.Error 上报的错误，按 AppError 的状态码和
// i18n 消息键统一渲染，未识别的错误一律按 500 返回
func GlobalErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果有错误发生
		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					if appErr.Code >= http.StatusInternalServerError {
						logger.Error("request failed",
							zap.String("path", c.Request.URL.Path),
							zap.Int("status", appErr.Code),
							zap.Error(appErr))
					}
					// 带有明确文案的错误原样返回，其余按消息键本地化
					if appErr.Message != "" {
						c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr))
						return
					}
					msg := i18n.T(c.Request.Context(), appErr.MessageID, nil)
					c.AbortWithStatusJSON(appErr.Code, response.Error(msg))
					return
				}
			}

			// 默认处理未定义的错误
			logger.Error("unhandled error",
				zap.String("path", c.Request.URL.Path),
				zap.Error(c.Errors[0].Err))
			msg := i18n.T(c.Request.Context(), "error.system", nil)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(msg))
			return
		}
	}
}
