package database

import (
	"context"
	"time"
	"vidhub-go/internal/config"
	"vidhub-go/pkg/log"

	"github.com/go-redis/redis/v8"
)

// RDB 保存令牌黑名单和上传进度位图。
var RDB *redis.Client

// InitRedis 初始化 Redis 客户端连接
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Infof("Redis client connected successfully, addr=%s db=%d", cfg.Addr, cfg.DB)
}
