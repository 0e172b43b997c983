package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

func TestManager_GenerateAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)

	pair, err := m.GenerateToken(42, "reader@example.com", "Reader")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "Reader", claims.Name)
}

func TestManager_RefreshTokenCannotAuthenticate(t *testing.T) {
	m := NewManager("test-secret", time.Hour, 24*time.Hour)
	pair, err := m.GenerateToken(1, "a@example.com", "A")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	access, err := m.RefreshAccessToken(pair.RefreshToken, "a@example.com", "A")
	require.NoError(t, err)
	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
}

func TestManager_ExpiredToken(t *testing.T) {
	m := NewManager("test-secret", -time.Minute, time.Hour)
	pair, err := m.GenerateToken(1, "a@example.com", "A")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestManager_WrongSecret(t *testing.T) {
	pair, err := NewManager("secret-a", time.Hour, time.Hour).GenerateToken(1, "a@example.com", "A")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, time.Hour).ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRemainingTTL(t *testing.T) {
	m := NewManager("test-secret", time.Hour, time.Hour)
	pair, err := m.GenerateToken(1, "a@example.com", "A")
	require.NoError(t, err)
	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)

	ttl := RemainingTTL(claims, time.Now())
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
	assert.Zero(t, RemainingTTL(claims, time.Now().Add(2*time.Hour)))
	assert.Zero(t, RemainingTTL(nil, time.Now()))
}
