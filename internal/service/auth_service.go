package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"shortlink-service/internal/apperrors"
	"shortlink-service/internal/config"
	"shortlink-service/internal/dto"
)

// TokenCache 令牌内省结果缓存接口，实现见 repository.TokenCache
type TokenCache interface {
	GetEmail(ctx context.Context, token string) (string, bool, error)
	SetEmailNX(ctx context.Context, token, email string) error
}

// AuthService 对接 SSO 的授权码换令牌与令牌内省
type AuthService struct {
	client *http.Client
	cache  TokenCache
	cfg    config.SSOConfig
	logger *zap.Logger
}

func NewAuthService(client *http.Client, cache TokenCache, cfg config.SSOConfig, logger *zap.Logger) *AuthService {
	return &AuthService{
		client: client,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
}

// ExchangeToken 用授权码到 SSO 换取访问令牌
func (s *AuthService) ExchangeToken(ctx context.Context, authorizationCode string) (*dto.AuthResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", authorizationCode)
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("redirect_uri", s.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.Host+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.SystemErrorDefault()
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("请求 SSO 换取令牌失败", zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		// 授权码无效或已被使用
		s.logger.Warn("SSO 拒绝授权码", zap.Int("status", resp.StatusCode))
		return nil, apperrors.ErrUnauthorized
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		s.logger.Error("SSO 换取令牌返回异常状态", zap.Int("status", resp.StatusCode))
		return nil, apperrors.BackendUnavailable(nil)
	}

	var token dto.AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		s.logger.Error("解析 SSO 令牌响应失败", zap.Error(err))
		return nil, apperrors.BackendUnavailable(err)
	}
	return &token, nil
}

// IntrospectToken 校验访问令牌并返回用户邮箱
// 先查 Redis 缓存，未命中再调 SSO 内省接口，结果异步回填缓存
func (s *AuthService) IntrospectToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", apperrors.ErrUnauthorized
	}

	email, hit, err := s.cache.GetEmail(ctx, token)
	if err != nil {
		s.logger.Warn("读取令牌缓存失败，回源 SSO", zap.Error(err))
	} else if hit {
		return email, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.Host+"/profile", nil)
	if err != nil {
		return "", apperrors.SystemErrorDefault()
	}
	req.Header.Set("Authorization", token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("请求 SSO 内省失败", zap.Error(err))
		return "", apperrors.BackendUnavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return "", apperrors.ErrUnauthorized
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		s.logger.Error("SSO 内省返回异常状态", zap.Int("status", resp.StatusCode))
		return "", apperrors.BackendUnavailable(nil)
	}

	var profile struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		s.logger.Error("解析 SSO 内省响应失败", zap.Error(err))
		return "", apperrors.BackendUnavailable(err)
	}
	if profile.Email == "" {
		return "", apperrors.ErrUnauthorized
	}

	// 异步回填，不阻塞请求，NX 保证并发内省只写一次
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.cache.SetEmailNX(cacheCtx, token, profile.Email); err != nil {
			s.logger.Warn("写入令牌缓存失败", zap.Error(err))
		}
	}()

	return profile.Email, nil
}
