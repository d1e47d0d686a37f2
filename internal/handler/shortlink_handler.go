package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shortlink-service/constant"
	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/dto"
	"shortlink-service/internal/i18n"
	"shortlink-service/internal/model"
	"shortlink-service/response"
)

// ShortLinkService 短链接业务接口，实现见 service.ShortLinkService
type ShortLinkService interface {
	CreateShortLink(ctx context.Context, ownerEmail string, req dto.CreateShortLinkRequest) (*model.ShortLink, error)
	Resolve(ctx context.Context, shortCode string) (*model.ShortLink, error)
	ListShortLinks(ctx context.Context, ownerEmail, afterCode, codeFilter string, limit int) ([]model.ShortLink, error)
	GetShortLink(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error)
	UpdateShortLinkStatus(ctx context.Context, ownerEmail string, id uuid.UUID, disabled bool) error
	DeleteShortLink(ctx context.Context, ownerEmail string, id uuid.UUID) (*model.ShortLink, error)
}

// ShortLinkHandler 短链接管理与跳转入口
type ShortLinkHandler struct {
	svc     ShortLinkService
	baseURL string
	logger  *zap.Logger
}

func NewShortLinkHandler(svc ShortLinkService, baseURL string, logger *zap.Logger) *ShortLinkHandler {
	return &ShortLinkHandler{svc: svc, baseURL: baseURL, logger: logger}
}

// Create 创建短链（POST /api/shortlink）
func (h *ShortLinkHandler) Create(c *gin.Context) {
	var req dto.CreateShortLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 记录请求上下文（方法、路径）
		h.logger.Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		//显式忽略返回值
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	ownerEmail := c.GetString(constant.RequesterEmailKey)
	link, err := h.svc.CreateShortLink(c.Request.Context(), ownerEmail, req)
	if err != nil {
		// 记录关键业务参数和错误上下文
		h.logger.Warn("Short chain creation failed",
			zap.Error(err),
			zap.String("short_code", req.ShortCode),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(
		dto.NewShortLinkResponse(link, h.baseURL),
		i18n.T(c.Request.Context(), "msg.shortlink_created", nil),
	))
}

// List 游标分页查询短链列表（GET /api/shortlink?after=xxx&limit=50&shortCode=xxx）
func (h *ShortLinkHandler) List(c *gin.Context) {
	after := c.Query("after")
	shortCode := c.Query("shortCode")

	limitStr := c.DefaultQuery("limit", "50")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 100 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_limit"))
		return
	}

	ownerEmail := c.GetString(constant.RequesterEmailKey)
	links, err := h.svc.ListShortLinks(c.Request.Context(), ownerEmail, after, shortCode, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	items := dto.NewShortLinkResponseList(links, h.baseURL)
	page := response.NewCursorPage(items, func(item dto.ShortLinkResponse) string {
		return item.ShortCode
	})
	c.JSON(http.StatusOK, response.OK(page, "success"))
}

// Get 查询单条短链（GET /api/shortlink/:id）
func (h *ShortLinkHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_id"))
		return
	}

	ownerEmail := c.GetString(constant.RequesterEmailKey)
	link, err := h.svc.GetShortLink(c.Request.Context(), ownerEmail, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(dto.NewShortLinkResponse(link, h.baseURL), "success"))
}

// UpdateStatus 更新短链状态，status 1 表示禁用（PUT /api/shortlink/status/:id）
func (h *ShortLinkHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_id"))
		return
	}

	// 解析请求体
	var req struct {
		Status int `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	// 校验 status 值
	if req.Status != 0 && req.Status != 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_status"))
		return
	}

	ownerEmail := c.GetString(constant.RequesterEmailKey)
	if err := h.svc.UpdateShortLinkStatus(c.Request.Context(), ownerEmail, id, req.Status == 1); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(struct{}{},
		i18n.T(c.Request.Context(), "msg.shortlink_status_updated", nil)))
}

// Delete 删除短链并返回被删记录，短码永久保留（DELETE /api/shortlink/:id）
func (h *ShortLinkHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_id"))
		return
	}

	ownerEmail := c.GetString(constant.RequesterEmailKey)
	link, err := h.svc.DeleteShortLink(c.Request.Context(), ownerEmail, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(dto.NewShortLinkResponse(link, h.baseURL),
		i18n.T(c.Request.Context(), "msg.shortlink_deleted", nil)))
}

// Redirect 短码跳转，挂在 NoRoute 上兜底处理全部未注册路径
// 跳转是面向浏览器的端点，错误只回状态码不回 JSON
func (h *ShortLinkHandler) Redirect(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	// 提取路径作为完整的 short_code（自动去掉前导 '/'）
	path := c.Request.URL.Path[1:] // 例如 /f/test3 → f/test3

	shortLink, err := h.svc.Resolve(c.Request.Context(), path)
	if err != nil {
		c.Status(statusFromError(err))
		return
	}

	// 设置响应头（仅在 302 时），避免浏览器缓存临时跳转
	if shortLink.RedirectCode == http.StatusFound {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	c.Redirect(shortLink.RedirectCode, shortLink.TargetURL)
}

// statusFromError 跳转路径的错误只保留状态码
func statusFromError(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusNotFound
}
