package service

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ReachabilityChecker 目标 URL 可达性探测，返回非 nil 表示不可达
type ReachabilityChecker func(ctx context.Context, rawURL string) error

// NewHTTPReachabilityChecker 用 HEAD 请求探测目标站点
// 只要求对端完成一次 HTTP 往返，5xx 也视为可达
func NewHTTPReachabilityChecker(client *http.Client, timeout time.Duration) ReachabilityChecker {
	return func(ctx context.Context, rawURL string) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
		if err != nil {
			return fmt.Errorf("build probe request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return fmt.Errorf("probe %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		return nil
	}
}
