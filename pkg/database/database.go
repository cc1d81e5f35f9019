// Package database 负责初始化关系数据库与 Redis 连接。
package database

import (
	"fmt"
	"qa-board-go/internal/config"
	"qa-board-go/pkg/log"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB 根据配置初始化数据库连接，失败时直接退出进程。
func InitDB(cfg config.DatabaseConfig) {
	var err error
	DB, err = Open(cfg)
	if err != nil {
		log.Fatal("failed to connect database", err)
	}
	log.Infof("%s database connected successfully", cfg.Driver)
}

// Open 按 driver 打开一个 gorm 连接。
// mysql 用于生产部署；sqlite 用于本地运行和测试，并强制开启外键约束。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.MySQL.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(sqliteDSN(cfg.SQLite.Path))
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(gormLogWriter),
		// 所有时间统一按 UTC 写入，展示时再转换时区
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "mysql" {
		sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
		sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
		sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间
	}
	return db, nil
}

// gormLogWriter 把 gorm 的日志转发到 zap。
var gormLogWriter logger.Writer = zapWriter{}

type zapWriter struct{}

func (zapWriter) Printf(template string, args ...interface{}) {
	log.Warnf(template, args...)
}

// newGormLogger 只记录慢查询和错误。查不到记录是正常分支，不记录。
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}
