// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"errors"
	"net/http"
	"qa-board-go/internal/config"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"
	"strings"

	"github.com/gin-gonic/gin"
)

// identityKey 是 Identity 在 gin 上下文中的键。
const identityKey = "identity"

// LoginPath 是未登录时前端应跳转的地址。
const LoginPath = "/login"

// AuthMiddleware 创建一个 Gin 中间件，用于会话认证。
// token 优先从 cookie 读取，其次是 "Authorization: Bearer <token>" 请求头。
// 认证成功后会续期会话，并把 Identity 存入上下文。
// 来自 cookie 的 token 会被重新写回，使浏览器端的过期时间与服务端的空闲窗口一起滑动。
func AuthMiddleware(userService service.UserService, sessionCfg config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := TokenFromRequest(c, sessionCfg.CookieName)
		if tokenString == "" {
			abortUnauthenticated(c)
			return
		}

		identity, err := userService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthenticated) {
				log.Errorf("[AuthMiddleware] 会话校验失败: %v", err)
			}
			abortUnauthenticated(c)
			return
		}

		if cookie, err := c.Cookie(sessionCfg.CookieName); err == nil && cookie == tokenString {
			SetSessionCookie(c, sessionCfg, tokenString, int(sessionCfg.IdleTimeout.Seconds()))
		}
		c.Set(identityKey, *identity)
		c.Next()
	}
}

// SetSessionCookie 写入会话 cookie。maxAge < 0 表示删除。
func SetSessionCookie(c *gin.Context, sessionCfg config.SessionConfig, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCfg.CookieName, value, maxAge, "/", "", sessionCfg.CookieSecure, true)
}

// TokenFromRequest 从 cookie 或 Authorization 头中取出 token。
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	const bearerPrefix = "Bearer "
	if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix)
	}
	return ""
}

// GetIdentity 返回 AuthMiddleware 写入的身份，未经过中间件时返回零值。
func GetIdentity(c *gin.Context) service.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(service.Identity); ok {
			return id
		}
	}
	return service.Identity{}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":     http.StatusUnauthorized,
		"message":  "ログインしてください。",
		"data":     nil,
		"redirect": LoginPath,
	})
}
