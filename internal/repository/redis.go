package repository

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shortlink-service/internal/config"
)

// NewRedisPool 创建 Redis 连接池，调用方负责 Close
func NewRedisPool(cfg config.RedisConfig, logger *zap.Logger) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     cfg.MaxIdle,
		MaxActive:   cfg.MaxActive,
		Wait:        true,
		IdleTimeout: cfg.IdleTimeout,
		Dial: func() (redis.Conn, error) {
			conn, err := redis.Dial("tcp", cfg.Addr,
				redis.DialPassword(cfg.Password),
				redis.DialConnectTimeout(cfg.ConnectTimeout),
				redis.DialReadTimeout(cfg.ReadTimeout),
				redis.DialWriteTimeout(cfg.WriteTimeout),
			)
			if err != nil {
				logger.Error("Failed to connect to Redis", zap.String("addr", cfg.Addr), zap.Error(err))
				return nil, err
			}
			return conn, nil
		},
		// 复用空闲连接前先探活，剔除其间被服务端断开的连接
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}
}
