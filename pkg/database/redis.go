package database

import (
	"context"
	"log"
	"time"

	"whitelight-store/pkg/config"

	"github.com/redis/go-redis/v9"
)

// InitRedis 初始化 Redis 连接 (登录限流用)
// 连不上不算致命错误：限流器在无 Redis 时直接放行
func InitRedis(cfg config.RedisConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password, // 没有密码则留空
		DB:       cfg.Db,       // 默认 0
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("WARN: redis unavailable, login rate limit disabled: %v", err)
		return rdb
	}

	log.Println("Redis connected successfully")
	return rdb
}
