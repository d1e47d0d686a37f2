package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
	"unicode"
)

// MaxTargetURLLength 目标 URL 最大长度，与数据库列宽一致
const MaxTargetURLLength = 2048

var shortCodePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(/[a-zA-Z0-9_-]+)*$`)

// ValidateShortCode 校验自定义 ShortCode 是否合法
func ValidateShortCode(shortCode string) error {
	if shortCode == "" {
		return fmt.Errorf("error.shortcode_required")
	}

	if ContainsWhitespace(shortCode) {
		return fmt.Errorf("error.shortcode_cannot_contain_spaces")
	}

	if len(shortCode) > 32 {
		return fmt.Errorf("error.shortcode_max_length")
	}

	if !shortCodePattern.MatchString(shortCode) {
		return fmt.Errorf("error.shortcode_invalid")
	}

	return nil
}

// ValidateTargetURL 校验目标 URL：必须是带 host 的绝对 http(s) 地址
func ValidateTargetURL(targetURL string) error {
	if targetURL == "" {
		return fmt.Errorf("error.target_url_required")
	}

	if len(targetURL) > MaxTargetURLLength {
		return fmt.Errorf("error.target_url_max_length")
	}

	u, err := url.ParseRequestURI(targetURL)
	if err != nil {
		return fmt.Errorf("error.target_url_invalid")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("error.target_url_invalid")
	}
	return nil
}

// ValidateExpiresAt 过期时间必须在当前时间之后
func ValidateExpiresAt(expiresAt *time.Time, now time.Time) error {
	if expiresAt == nil {
		return nil
	}
	if !expiresAt.After(now) {
		return fmt.Errorf("error.expires_at_in_past")
	}
	return nil
}

func ContainsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
