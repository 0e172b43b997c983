package user

import (
	"context"
	"errors"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/user"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// LoginUseCase 用户登录用例
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	sessionTTL   time.Duration
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore, sessionTTL time.Duration) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
}

// Execute 执行登录
// 邮箱不存在与密码错误返回同一个错误，避免探测已注册邮箱
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return issueTokens(ctx, uc.jwtManager, uc.sessionStore, uc.sessionTTL, u)
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	now          func() time.Time
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, now: time.Now}
}

// Execute 执行登出
// 1. 删除会话（Refresh Token随之失效）
// 2. Access Token加入黑名单，过期时间等于Token剩余有效期
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, jwt.RemainingTTL(claims, uc.now()))
}

// RefreshTokenUseCase 刷新Access Token
type RefreshTokenUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// RefreshResponse 刷新结果
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Execute 校验Refresh Token与会话，签发新的Access Token
// 已登出（会话不存在）的Refresh Token不能再使用
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != jwt.TokenTypeRefresh {
		return nil, apperrors.ErrInvalidToken
	}

	if _, err := uc.sessionStore.GetSession(ctx, claims.UserID); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, err
	}

	u, err := uc.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := uc.jwtManager.RefreshAccessToken(refreshToken, u.Email, u.Name)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{AccessToken: access}, nil
}

// GetCurrentUserUseCase 当前登录用户
type GetCurrentUserUseCase struct {
	userService user.Service
}

// NewGetCurrentUserUseCase 创建用例
func NewGetCurrentUserUseCase(userService user.Service) *GetCurrentUserUseCase {
	return &GetCurrentUserUseCase{userService: userService}
}

// Execute 查询用户信息
func (uc *GetCurrentUserUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}
