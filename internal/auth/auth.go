// Package auth implements password hashing and JWT access token handling.
// Tokens carry only the user ID and role; everything else is looked up fresh
// per request so a stale token cannot resurrect old territory assignments.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
)

// ErrInvalidToken is returned by Verify for expired, malformed, or
// wrongly-signed tokens. Middleware should map this to HTTP 401.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload for an access token.
type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth.HashPassword: %w", err)
	}
	return string(b), nil
}

// CheckPasswordHash reports whether password matches the stored bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Manager issues and verifies HMAC-signed access tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager constructs a Manager for the given signing secret and token
// lifetime.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue mints a signed token for the user.
func (m *Manager) Issue(user domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UID:  user.ID.String(),
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth.Manager.Issue: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token string and returns the caller it
// identifies. Any parse, signature, expiry, or claim-shape failure comes
// back as ErrInvalidToken.
func (m *Manager) Verify(tokenString string) (domain.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !token.Valid {
		return domain.Caller{}, ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.UID)
	if err != nil {
		return domain.Caller{}, ErrInvalidToken
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return domain.Caller{}, ErrInvalidToken
	}

	return domain.Caller{UID: uid, Role: role}, nil
}
