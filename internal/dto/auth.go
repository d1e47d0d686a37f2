package dto

// AuthCallbackRequest SSO 授权回调请求体
type AuthCallbackRequest struct {
	AuthorizationCode string `json:"authorizationCode" binding:"required"`
}

// AuthResponse 令牌交换结果，字段名遵循 OAuth2 惯例
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MeResponse 当前请求者信息
type MeResponse struct {
	Email string `json:"email"`
}
