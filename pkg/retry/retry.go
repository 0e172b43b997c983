package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 20 * time.Millisecond
	defaultJitterFactor = 0.3
)

var (
	// ErrInvalidMaxAttempts 重试次数必须为正数
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay 基础延迟不能为负
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidJitterFactor 抖动系数需在0.0到1.0之间
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// Func 可重试的函数
type Func func(ctx context.Context) error

type config struct {
	maxAttempts  int
	baseDelay    time.Duration
	jitterFactor float64
	retryable    func(error) bool
	onRetry      func(attempt int, err error)
}

// Option 函数式选项
type Option func(*config) error

// WithExponentialBackoff 指数退避重试
//
// 只有retryable判定为可重试的错误才会重试，其余错误立即返回。
// 默认重试计划：0ms, 20ms, 40ms（附加30%抖动）。
// ctx取消时立即返回ctx.Err()。
func WithExponentialBackoff(ctx context.Context, fn Func, opts ...Option) error {
	cfg := &config{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		jitterFactor: defaultJitterFactor,
		retryable:    func(error) bool { return false },
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return err
		}
	}

	var lastErr error
	for attempt := 0; attempt < cfg.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := cfg.baseDelay * time.Duration(1<<(attempt-1))
			jitter := rand.Float64() * float64(delay) * cfg.jitterFactor //nolint:gosec // 抖动不需要加密随机数
			select {
			case <-time.After(delay + time.Duration(jitter)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !cfg.retryable(lastErr) {
			return lastErr
		}
		if cfg.onRetry != nil && attempt < cfg.maxAttempts-1 {
			cfg.onRetry(attempt+1, lastErr)
		}
	}

	return lastErr
}

// MaxAttempts 设置最大尝试次数（含首次）
func MaxAttempts(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = n
		return nil
	}
}

// BaseDelay 设置退避基础延迟
func BaseDelay(d time.Duration) Option {
	return func(c *config) error {
		if d < 0 {
			return ErrNegativeBaseDelay
		}
		c.baseDelay = d
		return nil
	}
}

// JitterFactor 设置抖动系数
func JitterFactor(f float64) Option {
	return func(c *config) error {
		if f < 0.0 || f > 1.0 {
			return ErrInvalidJitterFactor
		}
		c.jitterFactor = f
		return nil
	}
}

// RetryIf 设置可重试错误判定
func RetryIf(fn func(error) bool) Option {
	return func(c *config) error {
		if fn != nil {
			c.retryable = fn
		}
		return nil
	}
}

// OnRetry 每次决定重试时回调（用于日志、指标）
func OnRetry(fn func(attempt int, err error)) Option {
	return func(c *config) error {
		c.onRetry = fn
		return nil
	}
}
