package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
	"github.com/xiebiao/bookreview/pkg/metrics"
	"github.com/xiebiao/bookreview/pkg/response"
)

// limiterIdleTTL 超过该时间没有请求的客户端会被清理
const limiterIdleTTL = 10 * time.Minute

// IPRateLimiter 按客户端IP的令牌桶
type IPRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*client
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter 创建限流器
func NewIPRateLimiter(cfg config.RateLimitConfig) *IPRateLimiter {
	metrics.InitMetrics()
	return &IPRateLimiter{
		limit:     rate.Limit(cfg.RPS),
		burst:     cfg.Burst,
		clients:   make(map[string]*client),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow 判断该IP本次请求是否放行
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	cl, ok := l.clients[ip]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < limiterIdleTTL {
		return
	}
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(l.clients, ip)
		}
	}
	l.lastSweep = now
}

// Middleware 超出速率返回429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			metrics.IncCounter(metrics.RateLimitedTotal)
			response.Error(c, apperrors.ErrTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}
