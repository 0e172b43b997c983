package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeBlacklist struct {
	tokens map[string]bool
	err    error
}

func (f *fakeBlacklist) IsInBlacklist(_ context.Context, token string) (bool, error) {
	return f.tokens[token], f.err
}

func newAuthEngine(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/me", m.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": MustGetUserID(c), "email": GetClaims(c).Email, "token": GetToken(c)})
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	manager := jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := manager.GenerateToken(7, "reader@example.com", "Reader")
	require.NoError(t, err)

	blacklist := &fakeBlacklist{tokens: map[string]bool{}}
	r := newAuthEngine(NewAuthMiddleware(manager, blacklist))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"缺少Token", "", http.StatusUnauthorized},
		{"格式错误", "Token " + pair.AccessToken, http.StatusUnauthorized},
		{"Refresh Token不能访问接口", "Bearer " + pair.RefreshToken, http.StatusUnauthorized},
		{"非法Token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"有效Token", "Bearer " + pair.AccessToken, http.StatusOK},
		{"Bearer大小写不敏感", "bearer " + pair.AccessToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", map[string]string{"Authorization": tt.header})
			assert.Equal(t, tt.status, w.Code)
		})
	}

	t.Run("注入用户信息", func(t *testing.T) {
		w := get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":7`)
		assert.Contains(t, w.Body.String(), "reader@example.com")
	})

	t.Run("已登出Token", func(t *testing.T) {
		blacklist.tokens[pair.AccessToken] = true
		defer delete(blacklist.tokens, pair.AccessToken)

		w := get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("黑名单查询失败", func(t *testing.T) {
		blacklist.err = errors.New("redis down")
		defer func() { blacklist.err = nil }()

		w := get(r, "/me", map[string]string{"Authorization": "Bearer " + pair.AccessToken})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis down")
	})
}

func TestIPRateLimiter_Allow(t *testing.T) {
	l := NewIPRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"), "超出突发容量")
	assert.True(t, l.Allow("10.0.0.2"), "不同IP独立计数")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "令牌按速率恢复")
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	l := NewIPRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1})
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	l.Allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + time.Second)
	l.Allow("10.0.0.2")

	assert.Len(t, l.clients, 1)
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	l := NewIPRateLimiter(config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1})
	r := gin.New()
	r.GET("/", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/", nil).Code)
	w := get(r, "/", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestCORS(t *testing.T) {
	cfg := config.CORSConfig{
		Enabled:          true,
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           time.Hour,
	}
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("允许的Origin", func(t *testing.T) {
		w := get(r, "/", map[string]string{"Origin": "http://localhost:3000"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("未允许的Origin", func(t *testing.T) {
		w := get(r, "/", map[string]string{"Origin": "http://evil.example"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("预检请求", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("无Origin不处理", func(t *testing.T) {
		w := get(r, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
