package model

import "time"

// Answer 对应于 answers 表，写入后不再修改。
type Answer struct {
	ID            uint      `gorm:"primaryKey"`
	QuestionID    uint      `gorm:"not null;index"`
	Question      *Question `gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	UserID        uint      `gorm:"not null;index"`
	User          *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	StudentNumber string    `gorm:"type:varchar(64);not null"`
	Content       string    `gorm:"column:answer_content;type:text;not null"`
	CreatedAt     time.Time `gorm:"index"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Answer) TableName() string {
	return "answers"
}
