package repository

import (
	"context"
	"encoding/json"

	"github.com/gomodule/redigo/redis"

	"shortlink-service/constant"
	"shortlink-service/internal/config"
	"shortlink-service/internal/model"
)

// LinkCache 短链接 Redis 缓存，正向缓存整条记录，负向缓存空串哨兵
type LinkCache struct {
	pool *redis.Pool
	cfg  config.CacheConfig
}

func NewLinkCache(pool *redis.Pool, cfg config.CacheConfig) *LinkCache {
	return &LinkCache{pool: pool, cfg: cfg}
}

// Get 查询缓存
// 返回 (link, true, nil) 表示命中记录，(nil, true, nil) 表示命中负缓存，
// (nil, false, nil) 表示未命中，error 非空时由调用方降级回源
func (c *LinkCache) Get(ctx context.Context, shortCode string) (*model.ShortLink, bool, error) {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return nil, false, err
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", constant.GetLinkKey(shortCode)))
	if err != nil {
		if err == redis.ErrNil {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(data) == 0 {
		// 负缓存命中，短码已确认不存在
		return nil, true, nil
	}

	var link model.ShortLink
	if err := json.Unmarshal(data, &link); err != nil {
		// 缓存内容损坏按未命中处理，回源后会被覆盖
		return nil, false, err
	}
	return &link, true, nil
}

// Set 写入正向缓存
func (c *LinkCache) Set(ctx context.Context, link *model.ShortLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", constant.GetLinkKey(link.ShortCode), data, "EX", int(c.cfg.LinkTTL.Seconds()))
	return err
}

// SetNegative 写入负缓存，挡住对不存在短码的反复回源
func (c *LinkCache) SetNegative(ctx context.Context, shortCode string) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", constant.GetLinkKey(shortCode), constant.NegativeCacheValue, "EX", int(c.cfg.NegativeTTL.Seconds()))
	return err
}

// Delete 删除缓存，记录变更后调用保证读到最新状态
func (c *LinkCache) Delete(ctx context.Context, shortCode string) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("DEL", constant.GetLinkKey(shortCode))
	return err
}

// Ping 健康检查探活
func (c *LinkCache) Ping(ctx context.Context) error {
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("PING")
	return err
}
