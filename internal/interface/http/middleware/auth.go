package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/jwt"
	"github.com/xiebiao/bookreview/pkg/response"
)

// Context中的key
const (
	ctxKeyUserID = "user_id"
	ctxKeyName   = "name"
	ctxKeyClaims = "claims"
	ctxKeyToken  = "token"
)

// TokenBlacklist 已登出Token的黑名单（Redis实现）
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单（已登出）
// 3. 验证签名与有效期，只接受Access Token
// 4. 将用户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	books.POST("", authMiddleware.RequireAuth(), bookHandler.CreateBook)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		isBlacklisted, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if isBlacklisted {
			response.Error(c, apperrors.ErrTokenRevoked)
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseAccessToken(tokenString)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Set(ctxKeyName, claims.Name)
		c.Set(ctxKeyClaims, claims)
		c.Set(ctxKeyToken, tokenString)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 从Context获取当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ctxKeyUserID); exists {
		if uid, ok := userID.(uint); ok {
			return uid
		}
	}
	return 0
}

// GetClaims 当前请求的Token Claims（登出时计算黑名单过期时间）
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, exists := c.Get(ctxKeyClaims); exists {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken 当前请求的原始Access Token
func GetToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}

// MustGetUserID 从Context获取用户ID（如果不存在则panic）
// 说明：用于已经通过RequireAuth中间件的Handler
func MustGetUserID(c *gin.Context) uint {
	userID := GetUserID(c)
	if userID == 0 {
		panic("user_id not found in context")
	}
	return userID
}
