package handler

import (
	"net/http"
	"qa-board-go/internal/config"
	"qa-board-go/internal/middleware"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 负责登录与登出。
type UserHandler struct {
	userService service.UserService
	sessionCfg  config.SessionConfig
}

// NewUserHandler 创建一个新的 UserHandler 实例。
func NewUserHandler(userService service.UserService, sessionCfg config.SessionConfig) *UserHandler {
	return &UserHandler{userService: userService, sessionCfg: sessionCfg}
}

// LoginRequest 定义了登录请求，表单与 JSON 均可。
type LoginRequest struct {
	StudentNumber string `form:"student_number" json:"student_number"`
	Passphrase    string `form:"passphrase" json:"passphrase"`
}

// Login 处理登录请求，成功后写入会话 cookie。
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		log.Warnf("Login: Invalid request payload, error: %v", err)
		badRequest(c)
		return
	}

	tokenString, identity, err := h.userService.Login(c.Request.Context(), req.StudentNumber, req.Passphrase)
	if err != nil {
		log.Warnf("Login: 学籍号 '%s' 登录失败: %v", req.StudentNumber, err)
		fail(c, err)
		return
	}

	middleware.SetSessionCookie(c, h.sessionCfg, tokenString, int(h.sessionCfg.IdleTimeout.Seconds()))
	log.Infof("用户 '%s' 登录成功", identity.StudentNumber)
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": msgSuccess,
		"data": gin.H{
			"token":         tokenString,
			"studentNumber": identity.StudentNumber,
		},
		"redirect": "/",
	})
}

// Logout 删除会话并清除 cookie。没有有效会话时同样视为成功。
func (h *UserHandler) Logout(c *gin.Context) {
	if tokenString := middleware.TokenFromRequest(c, h.sessionCfg.CookieName); tokenString != "" {
		if err := h.userService.Logout(c.Request.Context(), tokenString); err != nil {
			log.Warnf("Logout: 删除会话失败: %v", err)
		}
	}
	middleware.SetSessionCookie(c, h.sessionCfg, "", -1)
	c.JSON(http.StatusOK, gin.H{
		"code":     http.StatusOK,
		"message":  msgLoggedOut,
		"data":     nil,
		"redirect": middleware.LoginPath,
	})
}
