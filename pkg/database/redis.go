package database

import (
	"context"
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/pkg/log"
	"time"

	"github.com/go-redis/redis/v8"
)

// RDB 保存会话记录与 Kafka 重试计数。
var RDB *redis.Client

// InitRedis 初始化全局 Redis 客户端，连不上时直接退出进程。
func InitRedis(cfg config.RedisConfig) {
	var err error
	RDB, err = OpenRedis(cfg)
	if err != nil {
		log.Fatal("failed to connect to redis", err)
	}
	log.Infof("redis connected successfully, addr: %s, db: %d", cfg.Addr, cfg.DB)
}

// OpenRedis 创建客户端并在 3 秒内完成一次 PING。
func OpenRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
