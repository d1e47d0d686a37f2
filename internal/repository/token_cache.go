package repository

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"

	"shortlink-service/constant"
)

// DefaultTokenTTL 令牌缓存时长，取短值让注销和权限变更尽快生效
const DefaultTokenTTL = 30 * time.Second

// TokenCache 访问令牌到用户邮箱的短时缓存，减少对 SSO 的内省调用
type TokenCache struct {
	pool *redis.Pool
	ttl  time.Duration
}

func NewTokenCache(pool *redis.Pool, ttl time.Duration) *TokenCache {
	return &TokenCache{pool: pool, ttl: ttl}
}

// GetEmail 查询令牌对应的邮箱，未命中返回 ("", false, nil)
func (c *TokenCache) GetEmail(ctx context.Context, token string) (string, bool, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return "", false, err
	}
	defer conn.Close()

	email, err := redis.String(conn.Do("GET", constant.GetTokenKey(token)))
	if err != nil {
		if err == redis.ErrNil {
			return "", false, nil
		}
		return "", false, err
	}
	return email, true, nil
}

// SetEmailNX 写入令牌缓存，NX 保证并发内省时只有第一个结果生效
func (c *TokenCache) SetEmailNX(ctx context.Context, token, email string) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", constant.GetTokenKey(token), email, "EX", int(c.ttl.Seconds()), "NX")
	return err
}
