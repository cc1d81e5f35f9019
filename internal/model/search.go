package model

import "time"

// QuestionDocument 是写入 Elasticsearch 的问题文档。
type QuestionDocument struct {
	QuestionID    uint      `json:"question_id"`
	UserID        uint      `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Category      string    `json:"category"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

// QuestionHit 是返回给前端的搜索结果。
type QuestionHit struct {
	ID            uint      `json:"id"`
	Content       string    `json:"questionContent"`
	Category      string    `json:"category"`
	StudentNumber string    `json:"studentNumber"`
	CreatedAt     LocalTime `json:"createdAt"`
	Score         float64   `json:"score"`
}
