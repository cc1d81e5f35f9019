package middleware

import (
	"net/http"
	"net/http/httptest"
	"qa-board-go/internal/service"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(rl *RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set(identityKey, service.Identity{SessionID: "sid-" + user, UserID: uint(len(user)), StudentNumber: user})
		}
		c.Next()
	})
	r.GET("/preview", rl.Handler(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func hit(r *gin.Engine, user string) int {
	req := httptest.NewRequest(http.MethodGet, "/preview", nil)
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBurst(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(1, 2))

	assert.Equal(t, http.StatusOK, hit(r, "a"))
	assert.Equal(t, http.StatusOK, hit(r, "a"))
	assert.Equal(t, http.StatusTooManyRequests, hit(r, "a"))

	// 不同用户各自计数
	assert.Equal(t, http.StatusOK, hit(r, "bb"))
}

func TestRateLimiterUnlimited(t *testing.T) {
	r := newLimitedRouter(NewRateLimiter(0, 0))
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, hit(r, ""))
	}
}

func TestRateLimiterPrunesIdleEntries(t *testing.T) {
	rl := NewRateLimiter(60, 1)
	past := time.Now().Add(-time.Hour)
	for i := 0; i <= 1000; i++ {
		rl.getLimiter(string(rune('a'+i%26))+time.Duration(i).String(), past)
	}
	assert.Greater(t, len(rl.limiters), 1000)

	rl.getLimiter("fresh", time.Now())
	assert.Len(t, rl.limiters, 1)
}
