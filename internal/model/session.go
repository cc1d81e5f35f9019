package model

import "time"

// Session 是存储在 Redis 中的登录会话。
type Session struct {
	UserID        uint      `json:"userId"`
	StudentNumber string    `json:"studentNumber"`
	LoginAt       time.Time `json:"loginAt"`
}
