package constant

import "fmt"

// 常量定义
const (
	BasePrefix = "shortlink:"
	Separator  = ":"
)

// Redis 键模板
const (
	LinkKey  = BasePrefix + "link" + Separator + "%s"  // shortlink:link:<code>
	TokenKey = BasePrefix + "token" + Separator + "%s" // shortlink:token:<access token>
)

// NegativeCacheValue 空值哨兵：缓存"不存在"的结果，防止缓存穿透
const NegativeCacheValue = ""

// RequesterEmailKey gin 上下文中存放当前请求者邮箱的键
const RequesterEmailKey = "requester.email"

// GetLinkKey 生成短链缓存 key
func GetLinkKey(shortCode string) string {
	return fmt.Sprintf(LinkKey, shortCode)
}

// GetTokenKey 生成令牌缓存 key
func GetTokenKey(token string) string {
	return fmt.Sprintf(TokenKey, token)
}
