package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// DDD设计说明：
// 1. 密码已加密存储（bcrypt），实体不提供任何读取明文的方法
// 2. 领域实体不依赖GORM tag（infrastructure层的Repository实现时会处理映射）
// 3. 书评与图书只引用User.ID，其他字段对它们不透明
type User struct {
	ID        uint
	Name      string
	Email     string
	Password  string // bcrypt哈希值
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(name, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  hashedPassword,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizeEmail 邮箱统一转小写去空格，注册和登录使用同一规则
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
