package repository

import (
	"fmt"
	"qa-board-go/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate 创建或升级表结构，并确保 AI 哨兵用户存在。
func AutoMigrate(db *gorm.DB, sentinelStudentNumber string) (*model.User, error) {
	if err := db.AutoMigrate(&model.User{}, &model.Question{}, &model.Answer{}); err != nil {
		return nil, fmt.Errorf("auto migrate failed: %w", err)
	}
	sentinel, err := NewUserRepository(db).EnsureSentinel(sentinelStudentNumber)
	if err != nil {
		return nil, fmt.Errorf("ensure sentinel user failed: %w", err)
	}
	return sentinel, nil
}
