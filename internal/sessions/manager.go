// Package sessions issues and validates per-login bearer tokens.
//
// Tokens are HS256 JWTs carrying the account email as subject and a random
// session id (jti). Logging out records the jti in a Denylist until the token
// would have expired anyway.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kattu2003/PRODUCT/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrRevoked is returned for tokens whose session was logged out.
	ErrRevoked = errors.New("session revoked")
)

// Claims is the JWT payload of a session token.
type Claims struct {
	Role types.Role `json:"role"`
	jwt.RegisteredClaims
}

// Denylist remembers revoked session ids until they expire.
type Denylist interface {
	Add(ctx context.Context, sessionID string, until time.Time) error
	Contains(ctx context.Context, sessionID string) (bool, error)
}

// Manager signs, validates and revokes session tokens.
type Manager struct {
	secret   []byte
	ttl      time.Duration
	denylist Denylist
	now      func() time.Time
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(secret string, ttl time.Duration, denylist Denylist, opts ...Option) *Manager {
	m := &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue signs a fresh token for user. Every call yields a distinct session id.
func (m *Manager) Issue(user types.User) (string, error) {
	now := m.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and checks it has not been revoked.
func (m *Manager) Validate(ctx context.Context, tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	revoked, err := m.denylist.Contains(ctx, claims.ID)
	if err != nil {
		return Claims{}, fmt.Errorf("check session denylist: %w", err)
	}
	if revoked {
		return Claims{}, ErrRevoked
	}
	return claims, nil
}

// Revoke ends the session described by claims.
func (m *Manager) Revoke(ctx context.Context, claims Claims) error {
	until := m.now().Add(m.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	if err := m.denylist.Add(ctx, claims.ID, until); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}
