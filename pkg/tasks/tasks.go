// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// QuestionIndexTask 描述一个需要写入搜索索引的问题。
type QuestionIndexTask struct {
	QuestionID    uint      `json:"question_id"`
	UserID        uint      `json:"user_id"`
	StudentNumber string    `json:"student_number"`
	Category      string    `json:"category"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}
