// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"qa-board-go/internal/model"
	"qa-board-go/internal/repository"
	"qa-board-go/pkg/hash"
	"qa-board-go/pkg/log"
	"qa-board-go/pkg/token"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService 接口定义了登录会话与用户预置相关的业务操作。
type UserService interface {
	Login(ctx context.Context, studentNumber, passphrase string) (string, *Identity, error)
	Authenticate(ctx context.Context, tokenString string) (*Identity, error)
	Logout(ctx context.Context, tokenString string) error
	// Validate 确认 Identity 背后的会话仍然有效，并续期空闲时间。
	Validate(ctx context.Context, id Identity) error
	Register(studentNumber, passphrase string) (*model.User, error)
	ListUsers() ([]model.User, error)
}

// userService 是 UserService 接口的实现。
type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	jwtManager  *token.JWTManager
	idleTimeout time.Duration
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, jwtManager *token.JWTManager, idleTimeout time.Duration) UserService {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	return &userService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		jwtManager:  jwtManager,
		idleTimeout: idleTimeout,
	}
}

// Login 校验学籍号和口令，成功后创建会话并签发 token。
func (s *userService) Login(ctx context.Context, studentNumber, passphrase string) (string, *Identity, error) {
	studentNumber = strings.TrimSpace(studentNumber)
	passphrase = strings.TrimSpace(passphrase)
	if studentNumber == "" || passphrase == "" {
		return "", nil, ErrAuthenticationFailed
	}

	// 1. 查找用户
	user, err := s.userRepo.FindByStudentNumber(studentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	// 2. 验证口令，哨兵用户永远无法登录
	if user.IsSentinel || !hash.CheckPasswordHash(passphrase, user.PassphraseHash) {
		return "", nil, ErrAuthenticationFailed
	}

	// 3. 创建会话
	sessionID := uuid.NewString()
	session := model.Session{UserID: user.ID, StudentNumber: user.StudentNumber, LoginAt: time.Now().UTC()}
	if err := s.sessionRepo.Create(ctx, sessionID, session, s.idleTimeout); err != nil {
		return "", nil, err
	}

	// 4. 签发 token
	tokenString, err := s.jwtManager.GenerateToken(sessionID, user.ID, user.StudentNumber)
	if err != nil {
		_ = s.sessionRepo.Delete(ctx, sessionID)
		return "", nil, err
	}

	return tokenString, &Identity{SessionID: sessionID, UserID: user.ID, StudentNumber: user.StudentNumber}, nil
}

// Authenticate 校验 token 并续期对应的会话。
func (s *userService) Authenticate(ctx context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionRepo.Touch(ctx, claims.SessionID, s.idleTimeout)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		log.Warnf("[UserService] 会话与 token 不一致, sid: %s", claims.SessionID)
		return nil, ErrUnauthenticated
	}

	return &Identity{SessionID: claims.SessionID, UserID: session.UserID, StudentNumber: session.StudentNumber}, nil
}

// Validate 重新加载会话。会话过期、已登出或与 Identity 不一致时返回 ErrUnauthenticated。
func (s *userService) Validate(ctx context.Context, id Identity) error {
	if id.IsZero() {
		return ErrUnauthenticated
	}
	session, err := s.sessionRepo.Touch(ctx, id.SessionID, s.idleTimeout)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("validate session: %w", err)
	}
	if session.UserID != id.UserID {
		return ErrUnauthenticated
	}
	return nil
}

// Logout 删除会话，之后该 token 无法再使用。
func (s *userService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return ErrUnauthenticated
	}
	return s.sessionRepo.Delete(ctx, claims.SessionID)
}

// Register 预置一个新用户，口令以 bcrypt 哈希保存。
func (s *userService) Register(studentNumber, passphrase string) (*model.User, error) {
	studentNumber = strings.TrimSpace(studentNumber)
	passphrase = strings.TrimSpace(passphrase)
	if studentNumber == "" || passphrase == "" {
		return nil, fmt.Errorf("%w: student number and passphrase are required", ErrValidation)
	}

	// 1. 检查学籍号是否已存在
	_, err := s.userRepo.FindByStudentNumber(studentNumber)
	if err == nil {
		return nil, fmt.Errorf("%w: student number %s already exists", ErrValidation, studentNumber)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 对口令进行哈希处理
	hashed, err := hash.HashPassword(passphrase)
	if err != nil {
		return nil, err
	}

	// 3. 写入数据库
	user := &model.User{StudentNumber: studentNumber, PassphraseHash: hashed}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers 返回所有用户。
func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.FindAll()
}
