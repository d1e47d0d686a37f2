package apperrors

import (
	"net/http"
)

// AppError 自定义错误类型
// MessageID 为 i18n 消息键，错误中间件负责本地化；Message 为兜底文案
type AppError struct {
	Code      int
	MessageID string
	Message   string
	Cause     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.MessageID
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is 按 Code + MessageID 匹配，使 errors.Is(err, ErrNotFound) 对新建实例也成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.MessageID == t.MessageID
}

// WithCode 创建通用业务错误
func WithCode(code int, messageID string) *AppError {
	return &AppError{
		Code:      code,
		MessageID: messageID,
	}
}

// BusinessError 封装业务逻辑错误（通用）
func BusinessError(code int, messageID string) *AppError {
	return WithCode(code, messageID)
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(messageID string) *AppError {
	return WithCode(http.StatusBadRequest, messageID)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_request")
}

// SystemError 封装系统内部错误
func SystemError(message string) *AppError {
	return &AppError{
		Code:      http.StatusInternalServerError,
		MessageID: "error.system",
		Message:   message,
	}
}

// SystemErrorDefault 默认系统内部错误
func SystemErrorDefault() *AppError {
	return WithCode(http.StatusInternalServerError, "error.system")
}

// BackendUnavailable 持久层/后端不可用，对调用方表现为 503
func BackendUnavailable(cause error) *AppError {
	return &AppError{
		Code:      http.StatusServiceUnavailable,
		MessageID: "error.backend_unavailable",
		Cause:     cause,
	}
}

// 错误分类：解析与创建路径共用的哨兵值
var (
	// ErrNotFound 短码不存在（或已禁用、已删除）
	ErrNotFound = WithCode(http.StatusNotFound, "error.link_not_found")

	// ErrLinkExpired 短码存在但已过期
	ErrLinkExpired = WithCode(http.StatusGone, "error.link_expired")

	// ErrCodeExists 自定义短码已被占用
	ErrCodeExists = WithCode(http.StatusConflict, "error.shortcode_exists")

	// ErrCodeSpaceExhausted 随机短码重试次数用尽，理论上不应发生
	ErrCodeSpaceExhausted = WithCode(http.StatusInternalServerError, "error.code_space_exhausted")

	// ErrUnauthorized 未认证或令牌无效
	ErrUnauthorized = WithCode(http.StatusUnauthorized, "error.unauthorized")

	// ErrDomainNotAllowed 目标域名不在白名单内
	ErrDomainNotAllowed = WithCode(http.StatusForbidden, "error.domain_not_allowed")

	// ErrDomainExists 白名单域名已存在
	ErrDomainExists = WithCode(http.StatusConflict, "error.domain_exists")
)
