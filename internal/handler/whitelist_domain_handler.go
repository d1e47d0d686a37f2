package handler

import (
	"context"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/dto"
	"shortlink-service/internal/i18n"
	"shortlink-service/internal/model"
	"shortlink-service/response"
)

// WhitelistDomainService 域名白名单业务接口，实现见 service.WhitelistDomainService
type WhitelistDomainService interface {
	CreateWhitelistDomain(ctx context.Context, domain string) (*model.WhitelistDomain, error)
	ListWhitelistDomains(ctx context.Context, page, size int, domain string) (*response.PageResponse[model.WhitelistDomain], error)
	DeleteWhitelistDomain(ctx context.Context, id uuid.UUID) error
}

// WhitelistDomainHandler 域名白名单管理入口
type WhitelistDomainHandler struct {
	svc    WhitelistDomainService
	logger *zap.Logger
}

func NewWhitelistDomainHandler(svc WhitelistDomainService, logger *zap.Logger) *WhitelistDomainHandler {
	return &WhitelistDomainHandler{svc: svc, logger: logger}
}

// Create 创建白名单域名（POST /api/whitelist）
func (h *WhitelistDomainHandler) Create(c *gin.Context) {
	var req dto.CreateWhitelistDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 检查错误是否为 ValidationErrors 类型
		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			// 遍历所有校验错误
			for _, e := range validationErrs {
				// 通过反射获取字段的 msg 标签值
				field, ok := reflect.TypeOf(req).FieldByName(e.Field())
				if !ok {
					_ = c.Error(apperrors.InvalidRequestErrorDefault())
					return
				}

				customMsg := field.Tag.Get("msg")
				if customMsg != "" {
					_ = c.Error(apperrors.InvalidRequestError(customMsg))
					return
				}
			}
		}
		// 如果没有找到自定义错误提示，返回默认错误
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	domain, err := h.svc.CreateWhitelistDomain(c.Request.Context(), req.Domain)
	if err != nil {
		// 记录关键业务参数和错误上下文
		h.logger.Warn("whitelist domain creation failed",
			zap.Error(err),
			zap.String("domain", req.Domain),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response.OK(domain,
		i18n.T(c.Request.Context(), "msg.whitelist_domain_created", nil)))
}

// List 分页查询白名单（GET /api/whitelist?domain=xxx&page=1&size=10）
func (h *WhitelistDomainHandler) List(c *gin.Context) {
	// 1. 解析查询参数
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")
	domain := c.DefaultQuery("domain", "")

	// 参数转换
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_page"))
		return
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_size"))
		return
	}

	// 3. 调用服务层查询
	pageResp, err := h.svc.ListWhitelistDomains(c.Request.Context(), page, size, domain)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 构造响应
	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// Delete 删除白名单域名（DELETE /api/whitelist/:id）
func (h *WhitelistDomainHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_id"))
		return
	}

	if err := h.svc.DeleteWhitelistDomain(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(struct{}{},
		i18n.T(c.Request.Context(), "msg.whitelist_domain_deleted", nil)))
}
