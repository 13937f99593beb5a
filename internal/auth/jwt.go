// Package auth issues and verifies the identity cookie.
//
// The token is an HS256 JWT whose claims are the user payload posted to
// /jwt plus iat and exp. There is no revocation and no refresh: a token with
// a valid signature is trusted until it expires.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the decoded token payload.
type Claims map[string]any

// Email returns the email claim, or "" when absent or not a string.
func (c Claims) Email() string {
	email, _ := c["email"].(string)
	return email
}

type Manager struct {
	secret     []byte
	ttl        time.Duration
	production bool
}

func NewManager(secret string, ttl time.Duration, production bool) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	return &Manager{secret: []byte(secret), ttl: ttl, production: production}, nil
}

// IssueToken signs payload. Any iat or exp in payload is overwritten.
func (m *Manager) IssueToken(payload map[string]any) (string, error) {
	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}

	now := time.Now()
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm and expiry.
func (m *Manager) ValidateToken(tokenString string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return Claims(claims), nil
}
