package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"qa-board-go/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionNotFound 表示会话不存在（已过期或已登出）。
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository 定义了登录会话的存储操作。
type SessionRepository interface {
	Create(ctx context.Context, sessionID string, session model.Session, ttl time.Duration) error
	// Touch 读取会话并把过期时间重置为 ttl，实现按空闲时间过期。
	Touch(ctx context.Context, sessionID string, ttl time.Duration) (*model.Session, error)
	Delete(ctx context.Context, sessionID string) error
}

type redisSessionRepository struct {
	redisClient *redis.Client
}

// NewSessionRepository 创建一个基于 Redis 的 SessionRepository。
func NewSessionRepository(redisClient *redis.Client) SessionRepository {
	return &redisSessionRepository{redisClient: redisClient}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Create 写入一个新会话。
func (r *redisSessionRepository) Create(ctx context.Context, sessionID string, session model.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.redisClient.Set(ctx, sessionKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Touch 读取会话并续期。
func (r *redisSessionRepository) Touch(ctx context.Context, sessionID string, ttl time.Duration) (*model.Session, error) {
	key := sessionKey(sessionID)
	var get *redis.StringCmd
	_, err := r.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(get.Val()), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete 删除会话，会话不存在时不报错。
func (r *redisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.redisClient.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
