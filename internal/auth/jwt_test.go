package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, production bool) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", 365*24*time.Hour, production)
	require.NoError(t, err)
	return m
}

func TestNewManagerValidation(t *testing.T) {
	_, err := NewManager("", time.Hour, false)
	assert.Error(t, err)

	_, err = NewManager("s", 0, false)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	m := newTestManager(t, false)

	token, err := m.IssueToken(map[string]any{"email": "a@example.com", "name": "Ann"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", claims.Email())
	assert.Equal(t, "Ann", claims["name"])

	exp, ok := claims["exp"].(float64)
	require.True(t, ok, "exp should be numeric")
	lifetime := time.Until(time.Unix(int64(exp), 0))
	assert.InDelta(t, (365 * 24 * time.Hour).Seconds(), lifetime.Seconds(), 5)
}

func TestValidateRejects(t *testing.T) {
	m := newTestManager(t, false)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewManager("other-secret", time.Hour, false)
		require.NoError(t, err)
		token, err := other.IssueToken(map[string]any{"email": "a@example.com"})
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "a@example.com",
			"exp":   time.Now().Add(-time.Minute).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "a@example.com",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"email": "a@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestClaimsEmail(t *testing.T) {
	assert.Equal(t, "", Claims{}.Email())
	assert.Equal(t, "", Claims{"email": 42}.Email())
	assert.Equal(t, "x@example.com", Claims{"email": "x@example.com"}.Email())
}
