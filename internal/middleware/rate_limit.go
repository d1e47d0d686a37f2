package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"shortlink-service/internal/config"
)

// RateLimitMiddleware 按客户端 IP 限流，rate 形如 "100-M"（每分钟 100 次）
func RateLimitMiddleware(cfg config.RateLimitConfig) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(cfg.Rate)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, rate)), nil
}
