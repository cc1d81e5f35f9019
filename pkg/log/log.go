// Package log 封装了全局的 zap SugaredLogger。
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"qa-board-go/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  = zap.NewNop()
	sugar = base.Sugar()
)

// Init 按配置构建 logger。未知的日志级别按 info 处理。
// 在 Init 之前所有调用都落到 Nop logger 上，测试中无需初始化。
func Init(cfg config.LogConfig) error {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}

	var zapConfig zap.Config
	if cfg.Format == "console" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.Sampling = nil
	}
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.Level = level
	zapConfig.OutputPaths = []string{"stdout"}
	if cfg.OutputPath != "" {
		if err := os.MkdirAll(cfg.OutputPath, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		zapConfig.OutputPaths = append(zapConfig.OutputPaths, filepath.Join(cfg.OutputPath, "qa-board.log"))
	}

	logger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	base = logger
	sugar = logger.Sugar()
	return nil
}

// With 返回带固定字段的 logger，用于长时间运行的组件。
func With(keysAndValues ...interface{}) *zap.SugaredLogger {
	return base.WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

func Info(msg string) {
	sugar.Info(msg)
}

func Infof(template string, args ...interface{}) {
	sugar.Infof(template, args...)
}

// Infow 记录一条 info 级别的结构化日志。
func Infow(msg string, keysAndValues ...interface{}) {
	sugar.Infow(msg, keysAndValues...)
}

func Warnf(template string, args ...interface{}) {
	sugar.Warnf(template, args...)
}

// Warnw 记录一条 warn 级别的结构化日志。
func Warnw(msg string, keysAndValues ...interface{}) {
	sugar.Warnw(msg, keysAndValues...)
}

// Error 记录错误，err 以 "error" 字段输出。
func Error(msg string, err error) {
	sugar.Errorw(msg, "error", err)
}

func Errorf(template string, args ...interface{}) {
	sugar.Errorf(template, args...)
}

// Fatal 记录错误后退出进程。
func Fatal(msg string, err error) {
	sugar.Fatalw(msg, "error", err)
}

func Fatalf(template string, args ...interface{}) {
	sugar.Fatalf(template, args...)
}

// Sync 刷新缓冲区。
func Sync() {
	_ = sugar.Sync()
}
