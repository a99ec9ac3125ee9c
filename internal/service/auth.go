package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tertiusintegrity/fieldforce-api/internal/auth"
	"github.com/tertiusintegrity/fieldforce-api/internal/domain"
	"github.com/tertiusintegrity/fieldforce-api/internal/repo"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password. The two cases deliberately share one sentinel so responses do
// not reveal which part was wrong. Handlers should map this to HTTP 401.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TokenIssuer mints an access token for an authenticated user.
// Implemented by auth.Manager; an interface here keeps the service testable
// without a real signing key.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// AuthService implements the email/password login flow.
type AuthService struct {
	users  repo.UserRepo
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService backed by the provided user repo
// and token issuer.
func NewAuthService(users repo.UserRepo, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies the email/password pair and returns the user together with
// a signed access token. Unknown emails and wrong passwords are both
// reported as ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("service.AuthService.Login: issue token: %w", err)
	}

	return user, token, nil
}
