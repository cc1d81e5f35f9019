package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"qa-board-go/internal/handler"
	"qa-board-go/internal/repository"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/database"
	"qa-board-go/pkg/es"
	"qa-board-go/pkg/llm"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP サーバーを起動する",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	// 1. 初始化配置和日志
	cfg := setup()
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 2. 初始化数据库和 Redis
	database.InitDB(cfg.Database)
	database.InitRedis(cfg.Database.Redis)
	sentinel, err := repository.AutoMigrate(database.DB, cfg.Board.AIStudentNumber)
	if err != nil {
		return err
	}

	// 3. 可选组件：Elasticsearch、LLM
	esClient, err := es.InitES(cfg.Elasticsearch)
	if err != nil {
		log.Errorf("es 初始化失败, 搜索功能已关闭: %v", err)
		esClient = nil
	}
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Errorf("LLM 客户端初始化失败, AI 回答将不可用: %v", err)
		llmClient = nil
	}

	// 4. 初始化 Repository
	userRepo := repository.NewUserRepository(database.DB)
	questionRepo := repository.NewQuestionRepository(database.DB)
	answerRepo := repository.NewAnswerRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.RDB)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. 索引管道
	publisher, closePublisher := newIndexPublisher(ctx, cfg, esClient, questionRepo, database.RDB)
	defer closePublisher()

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TokenExpireHours)
	userService := service.NewUserService(userRepo, sessionRepo, jwtManager, cfg.Session.IdleTimeout)
	commentaryService := service.NewCommentaryService(llmClient, cfg.LLM)
	boardService := service.NewBoardService(userService, questionRepo, answerRepo, commentaryService, publisher, sentinel, cfg.Board)
	searchService := service.NewSearchService(esClient, cfg.Elasticsearch.IndexName)

	// 7. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.Services{
		User:       userService,
		Board:      boardService,
		Commentary: commentaryService,
		Search:     searchService,
	}, cfg.Session, cfg.RateLimit)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP 服务监听失败: %w", err)
	case <-ctx.Done():
	}
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP 服务器关闭失败: %w", err)
	}

	log.Info("服务已优雅关闭")
	return nil
}
