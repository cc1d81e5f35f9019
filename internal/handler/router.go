package handler

import (
	"net/http"
	"qa-board-go/internal/config"
	"qa-board-go/internal/middleware"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Services 汇总了路由需要的全部业务服务。
type Services struct {
	User       service.UserService
	Board      service.BoardService
	Commentary service.CommentaryService
	Search     service.SearchService
}

// NewRouter 创建 gin 引擎并注册全部路由。
func NewRouter(svc Services, sessionCfg config.SessionConfig, rateCfg config.RateLimitConfig) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery())
	previewLimiter := middleware.NewRateLimiter(rateCfg.PreviewPerMinute, rateCfg.PreviewBurst)

	userHandler := NewUserHandler(svc.User, sessionCfg)
	boardHandler := NewBoardHandler(svc.Board)
	commentaryHandler := NewCommentaryHandler(svc.Commentary)
	searchHandler := NewSearchHandler(svc.Search)

	// 无需认证的路由
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.POST("/login", userHandler.Login)
	r.GET("/logout", userHandler.Logout)

	// 需要认证的路由
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware(svc.User, sessionCfg))
	{
		authed.GET("/", boardHandler.Index)
		authed.GET("/category/:name", boardHandler.Category)
		authed.GET("/categories", boardHandler.Categories)
		authed.GET("/question/:id", boardHandler.Question)
		authed.POST("/ask", boardHandler.Ask)
		authed.POST("/answer/:questionId", boardHandler.Answer)
		authed.POST("/select_best/:questionId", boardHandler.SelectBest)
		authed.POST("/get_gemini_comment", previewLimiter.Handler(), commentaryHandler.Preview)
		authed.GET("/ws/comment", previewLimiter.Handler(), commentaryHandler.Stream)
		authed.GET("/search", searchHandler.Search)
	}
	return r
}
