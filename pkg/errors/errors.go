package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，HTTPStatus()按号段映射为HTTP状态码
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端
// 4. Fields携带字段级校验信息（字段名 → 提示）
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同一错误码视为同一类错误
// 这样预定义错误被Wrap/WithFields复制后仍能用errors.Is判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// HTTPStatus 业务错误码 → HTTP状态码
//
// 号段规则：
//   - 404xx → 404
//   - 403xx → 403
//   - 401xx → 401
//   - 400xx、409xx → 400（参数错误与冲突）
//   - 其余 → 500
func (e *AppError) HTTPStatus() int {
	switch e.Code / 100 {
	case 404:
		return http.StatusNotFound
	case 403:
		return http.StatusForbidden
	case 401:
		return http.StatusUnauthorized
	case 400, 409:
		return http.StatusBadRequest
	case 429:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// StoreUnavailable 存储层不可用（数据库/缓存连接失败、意外错误）
// 对外只暴露通用提示，底层错误保存在Err中供日志使用
func StoreUnavailable(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeStoreUnavailable,
		Message: message,
		Err:     err,
	}
}

// Validation 创建带字段详情的参数错误
func Validation(fields map[string]string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: "参数校验失败",
		Fields:  fields,
	}
}

// WithFields 复制错误并附加字段详情（不修改预定义错误）
func (e *AppError) WithFields(fields map[string]string) *AppError {
	cp := *e
	cp.Fields = fields
	return &cp
}

// WithCause 复制错误并附加底层原因（用于日志，不返回给客户端）
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误，前三位即HTTP状态码
// - 5xxxx: 服务端错误

const (
	// 系统级错误码
	ErrCodeInternal         = 50000 // 内部错误
	ErrCodeRedisError       = 50002 // Redis错误
	ErrCodeStoreUnavailable = 50300 // 存储不可用

	// 认证错误
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 邮箱或密码错误
	ErrCodeTokenRevoked    = 40104 // Token已注销

	// 授权错误
	ErrCodeForbidden = 40300 // 无权操作

	// 资源错误
	ErrCodeNotFound       = 40400 // 资源不存在(通用)
	ErrCodeBookNotFound   = 40401 // 图书不存在
	ErrCodeReviewNotFound = 40402 // 书评不存在
	ErrCodeUserNotFound   = 40403 // 用户不存在

	// 参数错误
	ErrCodeInvalidParams = 40000 // 参数错误
	ErrCodeBindError     = 40001 // 参数绑定失败
	ErrCodeWeakPassword  = 40002 // 密码强度不足

	// 冲突错误
	ErrCodeConflict        = 40900 // 约束冲突(通用)
	ErrCodeAlreadyReviewed = 40901 // 重复书评
	ErrCodeEmailDuplicate  = 40902 // 邮箱已存在

	// 限流
	ErrCodeTooManyRequests = 42900
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal         = New(ErrCodeInternal, "系统内部错误")
	ErrRedisError       = New(ErrCodeRedisError, "缓存服务错误")
	ErrStoreUnavailable = New(ErrCodeStoreUnavailable, "存储服务暂不可用")

	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "邮箱或密码错误")
	ErrTokenRevoked    = New(ErrCodeTokenRevoked, "Token已失效，请重新登录")

	ErrForbidden = New(ErrCodeForbidden, "无权操作该资源")

	ErrNotFound     = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
	ErrWeakPassword  = New(ErrCodeWeakPassword, "密码长度至少6位")

	ErrConflict       = New(ErrCodeConflict, "数据冲突")
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")

	ErrTooManyRequests = New(ErrCodeTooManyRequests, "请求过于频繁，请稍后再试")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
