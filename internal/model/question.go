package model

import "time"

// Question 对应于 questions 表。
// 只有 SelectBestAnswer 会修改三个 best_* 字段，Version 随之递增。
type Question struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	StudentNumber string    `gorm:"type:varchar(64);not null"`
	Content       string    `gorm:"column:question_content;type:text;not null"`
	Category      string    `gorm:"type:varchar(100);index"`
	CreatedAt     time.Time `gorm:"index"`
	// best_answer_id 与 answers 表互相引用，外键约束由服务层保证。
	BestAnswerID      *uint
	BestAnswerUserID  *uint
	BestStudentNumber *string `gorm:"type:varchar(64)"`
	Version           uint    `gorm:"not null;default:0"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Question) TableName() string {
	return "questions"
}

// HasBestAnswer 判断是否已经选出了最佳回答。
func (q *Question) HasBestAnswer() bool {
	return q.BestAnswerID != nil
}
