// Package token 提供了用于生成和验证会话 JSON Web Tokens (JWT) 的功能。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理 JWT 的生成和验证。
type JWTManager struct {
	secretKey []byte        // secretKey 用于签名和验证 token 的密钥
	tokenDur  time.Duration // tokenDur 是 token 的绝对有效期
}

// SessionClaims 定义了会话 token 中携带的数据。
// 会话是否仍然有效由服务端的会话记录决定，token 只负责防篡改。
type SessionClaims struct {
	SessionID     string `json:"sid"`
	UserID        uint   `json:"userId"`
	StudentNumber string `json:"studentNumber"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager 实例。
func NewJWTManager(secret string, tokenExpireHours int) *JWTManager {
	if tokenExpireHours <= 0 {
		tokenExpireHours = 24
	}
	return &JWTManager{
		secretKey: []byte(secret),
		tokenDur:  time.Hour * time.Duration(tokenExpireHours),
	}
}

// GenerateToken 为一个会话签发 token。
func (m *JWTManager) GenerateToken(sessionID string, userID uint, studentNumber string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		SessionID:     sessionID,
		UserID:        userID,
		StudentNumber: studentNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDur)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的 token 字符串，成功时返回其中的 SessionClaims。
func (m *JWTManager) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 检查签名方法是否为 HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
