package user

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// SessionStore 会话与Token黑名单存储（Redis实现）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	GetSession(ctx context.Context, userID uint) (map[string]string, error)
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// RegisterUseCase 用户注册用例
// 注册成功后直接签发Token，前端无需再调用一次登录
type RegisterUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	sessionTTL   time.Duration
}

// NewRegisterUseCase 创建注册用例
// sessionTTL与Refresh Token有效期一致
func NewRegisterUseCase(userService user.Service, jwtManager *jwt.Manager, sessionStore SessionStore, sessionTTL time.Duration) *RegisterUseCase {
	return &RegisterUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u, err := uc.userService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return issueTokens(ctx, uc.jwtManager, uc.sessionStore, uc.sessionTTL, u)
}

// =========================================
// 应用层DTO
// =========================================

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"` // Access Token过期时间（秒）
}

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// issueTokens 签发Token对并保存会话
// 会话是刷新Token的前提，登出时删除；保存失败不影响本次登录
func issueTokens(ctx context.Context, jwtManager *jwt.Manager, sessions SessionStore, ttl time.Duration, u *user.User) (*AuthResponse, error) {
	pair, err := jwtManager.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		return nil, err
	}

	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"name":     u.Name,
		"login_at": time.Now().Unix(),
	}
	if err := sessions.SaveSession(ctx, u.ID, sessionData, ttl); err != nil {
		slog.WarnContext(ctx, "保存会话失败", "user_id", u.ID, "error", err)
	}

	return &AuthResponse{
		User:         toUserInfo(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}
