// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"qa-board-go/internal/middleware"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// 返回给用户的提示语。
const (
	msgSuccess          = "success"
	msgLoginFailed      = "学籍番号またはパスワードが違います。"
	msgLoginRequired    = "ログインしてください。"
	msgPermissionDenied = "ベストアンサーを選べるのは質問者だけです。"
	msgNotFound         = "指定された質問または回答が見つかりません。"
	msgValidation       = "入力内容を確認してください。"
	msgConflict         = "ベストアンサーが他の操作で更新されました。もう一度お試しください。"
	msgGeneration       = "AIの応答を取得できませんでした。"
	msgSearchDisabled   = "検索機能は現在利用できません。"
	msgInternal         = "サーバーエラーが発生しました。"
	msgQuestionPosted   = "質問を投稿しました。"
	msgAnswerPosted     = "回答を投稿しました。"
	msgBestUpdated      = "ベストアンサーが更新されました。"
	msgBestUnchanged    = "既にベストアンサーに選ばれています。"
	msgLoggedOut        = "ログアウトしました。"
)

// ok 写出统一的成功响应。
func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": message, "data": data})
}

// fail 把业务错误映射为 HTTP 状态码与提示语。
func fail(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, msgInternal
	body := gin.H{}

	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		status, message = http.StatusUnauthorized, msgLoginFailed
		body["redirect"] = middleware.LoginPath
	case errors.Is(err, service.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, msgLoginRequired
		body["redirect"] = middleware.LoginPath
	case errors.Is(err, service.ErrPermissionDenied):
		status, message = http.StatusForbidden, msgPermissionDenied
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, msgNotFound
	case errors.Is(err, service.ErrValidation):
		status, message = http.StatusBadRequest, msgValidation
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, msgConflict
	case errors.Is(err, service.ErrGeneration):
		status, message = http.StatusBadGateway, msgGeneration
	case errors.Is(err, service.ErrSearchUnavailable):
		status, message = http.StatusServiceUnavailable, msgSearchDisabled
	}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Errorf("[Handler] %s %s 失败: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	_ = c.Error(err)

	body["code"] = status
	body["message"] = message
	body["data"] = nil
	c.JSON(status, body)
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": msgValidation, "data": nil})
}
