package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"shortlink-service/internal/model"
	"shortlink-service/pkg/utils"
)

// CreateShortLinkRequest 用于创建短链的请求参数
// ShortCode 省略时由服务端生成随机短码
type CreateShortLinkRequest struct {
	TargetURL    string     `json:"targetUrl" binding:"required,url"` // Gin 内置 URL 校验
	ShortCode    string     `json:"shortCode" binding:"omitempty,max=32"`
	RedirectCode int        `json:"redirectCode" binding:"omitempty,oneof=301 302"` // 仅允许301/302
	ExpiresAt    *time.Time `json:"expiresAt" binding:"omitempty"`
}

// Validate 自定义验证逻辑
func (r *CreateShortLinkRequest) Validate(now time.Time) error {
	// 1. 复用公共的 TargetURL 校验逻辑
	if err := utils.ValidateTargetURL(r.TargetURL); err != nil {
		return err
	}

	// 2. 自定义短码可选，给了才校验
	if r.ShortCode != "" {
		if err := utils.ValidateShortCode(r.ShortCode); err != nil {
			return err
		}
	}

	// 3. 过期时间必须在将来
	if err := utils.ValidateExpiresAt(r.ExpiresAt, now); err != nil {
		return err
	}

	return nil
}

// ShortLinkResponse 短链对外展示结构
type ShortLinkResponse struct {
	ID           uuid.UUID  `json:"id"`
	ShortCode    string     `json:"shortCode"`
	ShortURL     string     `json:"shortUrl"`
	TargetURL    string     `json:"targetUrl"`
	RedirectCode int        `json:"redirectCode"`
	Disabled     bool       `json:"disabled"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// NewShortLinkResponse 由模型构造响应，baseURL 用于拼接完整短链
func NewShortLinkResponse(link *model.ShortLink, baseURL string) ShortLinkResponse {
	return ShortLinkResponse{
		ID:           link.ID,
		ShortCode:    link.ShortCode,
		ShortURL:     JoinShortURL(baseURL, link.ShortCode),
		TargetURL:    link.TargetURL,
		RedirectCode: link.RedirectCode,
		Disabled:     link.Disabled,
		ExpiresAt:    link.ExpiresAt,
		CreatedAt:    link.CreatedAt,
	}
}

// NewShortLinkResponseList 批量转换
func NewShortLinkResponseList(links []model.ShortLink, baseURL string) []ShortLinkResponse {
	out := make([]ShortLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, NewShortLinkResponse(&links[i], baseURL))
	}
	return out
}

// JoinShortURL 拼接对外短链地址
func JoinShortURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/" + code
}
