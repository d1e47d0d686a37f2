package response

import (
	"time"

	"shortlink-service/internal/apperrors"
)

// Response 是一个通用的 API 响应结构
type Response[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PageResponse 分页响应结构体（page/size 风格，白名单列表使用）
type PageResponse[T any] struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalPage int `json:"totalPage"`
	Total     int `json:"total"`
	List      []T `json:"list"`
}

// CursorPage 游标分页响应：Last 为本页最后一条的游标，翻页时作为 after 传回
type CursorPage[T any] struct {
	List []T    `json:"list"`
	Last string `json:"last,omitempty"`
}

// NewCursorPage 构造游标分页，cursor 提取每条记录的游标值
func NewCursorPage[T any](list []T, cursor func(T) string) *CursorPage[T] {
	page := &CursorPage[T]{List: list}
	if len(list) > 0 {
		page.Last = cursor(list[len(list)-1])
	}
	return page
}

// OK 构造一个成功的响应
func OK[T any](data T, message string) *Response[T] {
	return &Response[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Error 构造一个失败的响应
func Error(message string) *Response[any] {
	return &Response[any]{
		Success:   false,
		Message:   message,
		Data:      nil,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ErrorFromAppError 基于 AppError 构造错误响应
func ErrorFromAppError(err *apperrors.AppError) *Response[any] {
	return Error(err.Error())
}
