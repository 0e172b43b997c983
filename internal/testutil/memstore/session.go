package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// SessionStore 内存会话与黑名单，对应redis.SessionStore
// 不处理过期，ttl只记录下来供断言
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]map[string]string
	blacklist map[string]time.Duration
	fail      error
}

// NewSessionStore 创建空的会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[uint]map[string]string),
		blacklist: make(map[string]time.Duration),
	}
}

// Fail 之后所有操作都返回err（nil恢复正常）
func (s *SessionStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}

	data := make(map[string]string, len(sessionData))
	for k, v := range sessionData {
		data[k] = fmt.Sprint(v)
	}
	s.sessions[userID] = data
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}

	data, ok := s.sessions[userID]
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return data, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if ttl <= 0 {
		return nil
	}
	s.blacklist[token] = ttl
	return nil
}

func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return false, s.fail
	}
	_, ok := s.blacklist[token]
	return ok, nil
}

// BlacklistTTL 黑名单中token的过期时间，不存在返回false
func (s *SessionStore) BlacklistTTL(token string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ttl, ok := s.blacklist[token]
	return ttl, ok
}

// HasSession 是否存在会话
func (s *SessionStore) HasSession(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[userID]
	return ok
}
