package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-engine/internal/apperror"
)

func newTestAuth(t *testing.T, secret string, ttl time.Duration, now time.Time) *authServiceImpl {
	t.Helper()

	auth, err := NewAuthService(secret, ttl)
	require.NoError(t, err)

	impl, ok := auth.(*authServiceImpl)
	require.True(t, ok)
	impl.now = func() time.Time { return now }

	return impl
}

func TestNewAuthService(t *testing.T) {
	// When: the secret is empty
	auth, err := NewAuthService("", time.Hour)

	// Then: construction fails
	require.ErrorIs(t, err, apperror.ErrEmptySecret)
	assert.Nil(t, auth)
}

func TestAuthService_Tokens(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Token round trip returns the session id", func(t *testing.T) {
		// Given: an auth service
		auth := newTestAuth(t, "secret", time.Hour, now)

		// When: a token is generated and parsed
		token, err := auth.GenerateToken("session-1")
		require.NoError(t, err)

		sessionID, err := auth.ParseToken(token)

		// Then: the same session id comes back
		require.NoError(t, err)
		assert.Equal(t, "session-1", sessionID)
	})

	t.Run("Expired token is rejected", func(t *testing.T) {
		// Given: a token issued an hour ago with a one minute TTL
		issuer := newTestAuth(t, "secret", time.Minute, now.Add(-time.Hour))
		token, err := issuer.GenerateToken("session-1")
		require.NoError(t, err)

		// When: it is parsed now
		auth := newTestAuth(t, "secret", time.Minute, now)
		_, err = auth.ParseToken(token)

		// Then: ErrUnauthorized wraps the expiry error
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Token signed with another key is rejected", func(t *testing.T) {
		other := newTestAuth(t, "other", time.Hour, now)
		token, err := other.GenerateToken("session-1")
		require.NoError(t, err)

		auth := newTestAuth(t, "secret", time.Hour, now)
		_, err = auth.ParseToken(token)

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Garbage is rejected", func(t *testing.T) {
		auth := newTestAuth(t, "secret", time.Hour, now)

		_, err := auth.ParseToken("not-a-token")

		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Token without subject is rejected", func(t *testing.T) {
		auth := newTestAuth(t, "secret", time.Hour, now)

		token, err := auth.GenerateToken("")
		require.NoError(t, err)

		_, err = auth.ParseToken(token)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})
}
