package repository

import (
	"qa-board-go/internal/model"

	"gorm.io/gorm"
)

// AnswerRepository 接口定义了回答数据的持久化操作。
type AnswerRepository interface {
	Create(answer *model.Answer) error
	// CreateInOrder 在一个事务中按顺序写入多条回答。
	CreateInOrder(answers ...*model.Answer) error
	FindByID(answerID uint) (*model.Answer, error)
	// FindByQuestionID 按创建时间倒序返回某个问题下的回答。
	FindByQuestionID(questionID uint) ([]model.Answer, error)
	CountByQuestionID(questionID uint) (int64, error)
}

type answerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository 创建一个新的 AnswerRepository 实例。
func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// Create 写入一条回答。
func (r *answerRepository) Create(answer *model.Answer) error {
	return r.db.Create(answer).Error
}

// CreateInOrder 在同一事务中依次写入，任一失败则全部回滚。
func (r *answerRepository) CreateInOrder(answers ...*model.Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range answers {
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByID 根据 ID 查找回答。
func (r *answerRepository) FindByID(answerID uint) (*model.Answer, error) {
	var answer model.Answer
	if err := r.db.First(&answer, answerID).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

// FindByQuestionID 按创建时间倒序返回回答，同一时间戳下按 ID 倒序。
func (r *answerRepository) FindByQuestionID(questionID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.Where("question_id = ?", questionID).
		Order("created_at DESC").Order("id DESC").
		Find(&answers).Error
	return answers, err
}

// CountByQuestionID 统计某个问题下的回答数量。
func (r *answerRepository) CountByQuestionID(questionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Answer{}).Where("question_id = ?", questionID).Count(&count).Error
	return count, err
}
