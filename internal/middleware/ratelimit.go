package middleware

import (
	"net/http"
	"qa-board-go/pkg/log"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter 按用户限制 AI 预览接口的调用频率。
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rate     rate.Limit
	burst    int
	idleTTL  time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 创建一个每分钟 perMinute 次、突发 burst 次的限流器。perMinute <= 0 时不限流。
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rate:     limit,
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// getLimiter returns a rate limiter for the given key and drops entries idle longer than idleTTL.
func (rl *RateLimiter) getLimiter(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.limiters[key]
	if !exists {
		if len(rl.limiters) > 1000 {
			for k, e := range rl.limiters {
				if now.Sub(e.lastSeen) > rl.idleTTL {
					delete(rl.limiters, k)
				}
			}
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Handler 返回 gin 中间件。已登录时以用户 ID 为键，否则以客户端 IP 为键。
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id := GetIdentity(c); !id.IsZero() {
			key = "user:" + strconv.FormatUint(uint64(id.UserID), 10)
		}

		if !rl.getLimiter(key, time.Now()).Allow() {
			log.Warnw("rate limit exceeded", "key", key, "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "リクエストが多すぎます。しばらく待ってから再度お試しください。",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}
