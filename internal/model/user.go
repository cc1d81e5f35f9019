// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// User 对应于 users 表。用户由管理员通过 CLI 预先创建，本服务不会修改或删除用户。
type User struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	StudentNumber string `gorm:"type:varchar(64);uniqueIndex;not null" json:"studentNumber"`
	// PassphraseHash 保存 bcrypt 哈希，哨兵用户为空串，因此永远无法登录。
	PassphraseHash string `gorm:"type:varchar(255);not null;default:''" json:"-"`
	// IsSentinel 标记用于承载 AI 生成回答的占位用户。
	IsSentinel bool      `gorm:"not null;default:false" json:"isSentinel"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (User) TableName() string {
	return "users"
}
