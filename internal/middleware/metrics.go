package middleware

import (
	"qa-board-go/pkg/metrics"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics 记录每个请求的次数与耗时，未匹配路由的请求统一记为 "unmatched"。
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
