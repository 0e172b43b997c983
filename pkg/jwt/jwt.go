package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

const issuer = "bookreview"

// Token类型，防止Refresh Token被当作Access Token调用接口
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Manager JWT管理器
// 设计说明：
// 1. 双Token机制：Access Token（短期）+ Refresh Token（长期）
// 2. Access Token用于API鉴权，Refresh Token只能用于换取新的Access Token
type Manager struct {
	secret             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             secret,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Claims 自定义JWT Claims
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair Token对（Access + Refresh）
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // Access Token过期时间（秒）
}

// GenerateToken 生成Token对
func (m *Manager) GenerateToken(userID uint, email, name string) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := m.sign(Claims{
		UserID:           userID,
		Email:            email,
		Name:             name,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: m.registered(userID, now, m.accessTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Access Token失败")
	}

	// Refresh Token只包含UserID，减少payload大小
	refreshToken, err := m.sign(Claims{
		UserID:           userID,
		TokenType:        TokenTypeRefresh,
		RegisteredClaims: m.registered(userID, now, m.refreshTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "生成Refresh Token失败")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// ParseToken 解析并验证Token（签名、exp、nbf）
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("非法的签名算法: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}

// ParseAccessToken 解析Access Token，拒绝Refresh Token
func (m *Manager) ParseAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccessToken 使用Refresh Token换取新的Access Token
// email、name由调用方从用户仓储读取（Refresh Token里不携带）
func (m *Manager) RefreshAccessToken(refreshToken, email, name string) (string, error) {
	claims, err := m.ParseToken(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", apperrors.ErrInvalidToken
	}

	tokenString, err := m.sign(Claims{
		UserID:           claims.UserID,
		Email:            email,
		Name:             name,
		TokenType:        TokenTypeAccess,
		RegisteredClaims: m.registered(claims.UserID, time.Now(), m.accessTokenExpire),
	})
	if err != nil {
		return "", apperrors.Wrap(err, "刷新Token失败")
	}
	return tokenString, nil
}

// RemainingTTL Token剩余有效期（用于登出时设置黑名单过期时间）
func RemainingTTL(claims *Claims, now time.Time) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	ttl := claims.ExpiresAt.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
}

func (m *Manager) registered(userID uint, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   fmt.Sprintf("%d", userID),
	}
}
