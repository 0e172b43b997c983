package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// DefaultBcryptCost bcrypt默认cost（约250ms，平衡安全与性能）
const DefaultBcryptCost = 12

// MinPasswordLength 密码最短长度
const MinPasswordLength = 6

// Service 用户领域服务
// 设计说明：
// 1. Service包含不属于单个实体的业务逻辑（如密码加密、验证）
// 2. Service依赖Repository接口，不依赖具体实现（依赖倒置）
// 3. Service不处理HTTP请求，只处理业务逻辑
type Service interface {
	// Register 用户注册
	Register(ctx context.Context, name, email, password string) (*User, error)

	// Login 用户登录，邮箱不存在与密码错误返回同一个错误
	Login(ctx context.Context, email, password string) (*User, error)

	// GetUser 根据ID获取用户
	GetUser(ctx context.Context, id uint) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return NewServiceWithCost(repo, DefaultBcryptCost)
}

// NewServiceWithCost 指定bcrypt cost（测试中使用bcrypt.MinCost）
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Register 用户注册
// 业务规则：
// 1. 姓名必填，邮箱格式合法
// 2. 密码至少6位
// 3. 邮箱唯一性由数据库UNIQUE索引保证
func (s *service) Register(ctx context.Context, name, email, password string) (*User, error) {
	fields := make(map[string]string)
	if name = strings.TrimSpace(name); name == "" {
		fields["name"] = "姓名不能为空"
	} else if len([]rune(name)) > 50 {
		fields["name"] = "姓名不能超过50个字符"
	}
	if !isValidEmail(NormalizeEmail(email)) {
		fields["email"] = "邮箱格式不正确"
	}
	if len(password) < MinPasswordLength {
		fields["password"] = apperrors.ErrWeakPassword.Message
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields)
	}

	// bcrypt自动加盐，每次加密结果都不同
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	u := NewUser(name, email, string(hashedPassword))
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err // Repository已转换为业务错误
	}
	return u, nil
}

// Login 用户登录
// 邮箱不存在也返回ErrInvalidPassword，避免泄露邮箱是否注册
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}

	return u, nil
}

// GetUser 根据ID获取用户
func (s *service) GetUser(ctx context.Context, id uint) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// isValidEmail 邮箱格式校验
func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
