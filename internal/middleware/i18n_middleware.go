package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"

	"shortlink-service/internal/i18n"
)

// I18nMiddleware 按 Accept-Language 选择语言，把 Localizer 注入请求上下文
// 带地区子标签的语言（如 zh-CN）回退到基础语言匹配
func I18nMiddleware(bundle *thirdPartyI18n.Bundle) gin.HandlerFunc {
	return func(c *gin.Context) {
		acceptLanguage := c.GetHeader("Accept-Language")
		tags, _, _ := language.ParseAcceptLanguage(acceptLanguage)
		lang := "en" // 默认语言
		for _, tag := range tags {
			if matched, ok := matchLanguage(tag); ok {
				lang = matched
				break
			}
		}

		localizer := thirdPartyI18n.NewLocalizer(bundle, lang)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), i18n.LocalizerContextKey, localizer))
		c.Next()
	}
}

func matchLanguage(tag language.Tag) (string, bool) {
	full := tag.String()
	base, _ := tag.Base()
	for _, supported := range i18n.SupportedLanguages {
		if supported == full || supported == base.String() {
			return supported, true
		}
	}
	return "", false
}
