package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"whitelight-store/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// LoginRateLimit 登录接口按 IP 固定窗口限流，防止爆破
// Redis 不可用时放行 (可用性优先于限流)
func LoginRateLimit(rdb *redis.Client, maxAttempts int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:login:%s", c.ClientIP())

		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Printf("WARN: rate limit check failed, allowing request: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}

		if count > int64(maxAttempts) {
			response.Fail(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
