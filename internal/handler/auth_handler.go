package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink-service/constant"
	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/dto"
	"shortlink-service/response"
)

// TokenExchanger 授权码换令牌接口，实现见 service.AuthService
type TokenExchanger interface {
	ExchangeToken(ctx context.Context, authorizationCode string) (*dto.AuthResponse, error)
}

// AuthHandler SSO 登录回调与当前用户查询
type AuthHandler struct {
	svc    TokenExchanger
	logger *zap.Logger
}

func NewAuthHandler(svc TokenExchanger, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Callback SSO 登录回调，用授权码换取访问令牌（POST /auth/callback）
func (h *AuthHandler) Callback(c *gin.Context) {
	var req dto.AuthCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Request body binding failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	token, err := h.svc.ExchangeToken(c.Request.Context(), req.AuthorizationCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(token, "success"))
}

// Me 返回当前登录用户（GET /me），邮箱由认证中间件写入上下文
func (h *AuthHandler) Me(c *gin.Context) {
	email := c.GetString(constant.RequesterEmailKey)
	c.JSON(http.StatusOK, response.OK(dto.MeResponse{Email: email}, "success"))
}
