package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"undercover_web/pkg/config"
)

// RedisClient 包裝 go-redis 客戶端，用於遊戲狀態快取、
// 排行榜快取與結算日誌
type RedisClient struct {
	*redis.Client
}

func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		// 小規格主機上限制連線數
		PoolSize:     5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisClient{Client: rdb}, nil
}

// IsNil 判斷錯誤是否為快取未命中
func IsNil(err error) bool {
	return err == redis.Nil
}
