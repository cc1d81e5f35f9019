// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"qa-board-go/pkg/log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger 是一个 Gin 中间件，为每个请求记录一条结构化日志。
// 请求体中含有口令，因此不记录请求体和响应体。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		fields := []interface{}{
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		}
		if id := GetIdentity(c); !id.IsZero() {
			fields = append(fields, "studentNumber", id.StudentNumber)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		log.Infow("HTTP Request Log", fields...)
	}
}
