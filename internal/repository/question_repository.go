package repository

import (
	"qa-board-go/internal/model"

	"gorm.io/gorm"
)

// QuestionRepository 接口定义了问题数据的持久化操作。
type QuestionRepository interface {
	Create(question *model.Question) error
	FindByID(questionID uint) (*model.Question, error)
	// List 按创建时间倒序返回问题，category 为空时返回全部。
	List(category string) ([]model.Question, error)
	// UpdateBestAnswer 在 version 未变化时写入最佳回答并递增 version，返回是否写入成功。
	UpdateBestAnswer(questionID, expectedVersion uint, answer *model.Answer) (bool, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建一个新的 QuestionRepository 实例。
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

// Create 创建一个新问题。
func (r *questionRepository) Create(question *model.Question) error {
	return r.db.Create(question).Error
}

// FindByID 根据 ID 查找问题。
func (r *questionRepository) FindByID(questionID uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.First(&question, questionID).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// List 按创建时间倒序列出问题。同一时间戳下按 ID 倒序，保证先写入的排在后面。
func (r *questionRepository) List(category string) ([]model.Question, error) {
	var questions []model.Question
	db := r.db.Model(&model.Question{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	err := db.Order("created_at DESC").Order("id DESC").Find(&questions).Error
	return questions, err
}

// UpdateBestAnswer 用一条带版本条件的 UPDATE 写入三个最佳回答字段。
func (r *questionRepository) UpdateBestAnswer(questionID, expectedVersion uint, answer *model.Answer) (bool, error) {
	res := r.db.Model(&model.Question{}).
		Where("id = ? AND version = ?", questionID, expectedVersion).
		Updates(map[string]interface{}{
			"best_answer_id":      answer.ID,
			"best_answer_user_id": answer.UserID,
			"best_student_number": answer.StudentNumber,
			"version":             gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
