package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

const keyPrefix = "bookreview:"

// SessionStore 会话存储
// 设计说明：
// 1. 登录时保存会话，Refresh Token换取Access Token前必须存在会话
// 2. 登出时删除会话，并把Access Token加入黑名单直到其过期
// 3. Key设计：bookreview:session:{user_id}、bookreview:blacklist:{sha256(token)}
type SessionStore struct {
	client redis.UniversalClient
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// SaveSession 保存用户会话（HSET + EXPIRE在同一个MULTI中执行）
func (s *SessionStore) SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	key := sessionKey(userID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, sessionData)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "保存会话失败").WithCause(err)
	}
	return nil
}

// GetSession 获取用户会话，不存在返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, userID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeRedisError, "获取会话失败").WithCause(err)
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除用户会话（用于登出）
func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "删除会话失败").WithCause(err)
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单，ttl为Token剩余有效期
// ttl<=0说明Token已过期，无需加入
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.New(apperrors.ErrCodeRedisError, "添加Token到黑名单失败").WithCause(err)
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.New(apperrors.ErrCodeRedisError, "检查黑名单失败").WithCause(err)
	}
	return exists > 0, nil
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("%ssession:%d", keyPrefix, userID)
}

// blacklistKey Token较长，用摘要作为key
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return keyPrefix + "blacklist:" + hex.EncodeToString(sum[:])
}
