// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"errors"
	"qa-board-go/internal/model"

	"gorm.io/gorm"
)

// UserRepository 接口定义了用户数据的持久化操作。
type UserRepository interface {
	Create(user *model.User) error
	FindByStudentNumber(studentNumber string) (*model.User, error)
	FindByID(userID uint) (*model.User, error)
	FindAll() ([]model.User, error)
	EnsureSentinel(studentNumber string) (*model.User, error)
}

// userRepository 是 UserRepository 接口的 GORM 实现。
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建一个新的 UserRepository 实例。
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create 在数据库中创建一个新的用户记录。
func (r *userRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByStudentNumber 根据学籍号查找一个用户。
func (r *userRepository) FindByStudentNumber(studentNumber string) (*model.User, error) {
	var user model.User
	err := r.db.Where("student_number = ?", studentNumber).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID 根据用户 ID 查找一个用户。
func (r *userRepository) FindByID(userID uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll 检索所有用户记录，按 ID 排序。
func (r *userRepository) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

// EnsureSentinel 返回 AI 哨兵用户，不存在时创建。
// 如果该学籍号已经属于一个普通用户，则返回错误，避免把真人的回答标记为 AI。
func (r *userRepository) EnsureSentinel(studentNumber string) (*model.User, error) {
	user, err := r.FindByStudentNumber(studentNumber)
	if err == nil {
		if !user.IsSentinel {
			return nil, errors.New("sentinel student number is already used by a regular user")
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sentinel := &model.User{StudentNumber: studentNumber, IsSentinel: true}
	if err := r.Create(sentinel); err != nil {
		return nil, err
	}
	return sentinel, nil
}
