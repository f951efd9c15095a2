package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"insight-server/internal/model"
)

// AuthService verifies submitted credentials against the stored hash and
// hands out token pairs for verified principals.
type AuthService struct {
	users  UserStore
	tokens *TokenService
}

func NewAuthService(users UserStore, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Authenticate looks the user up by email and verifies the plaintext against
// the stored bcrypt hash. Both "no such user" and "wrong password" collapse
// into model.ErrInvalidCredentials so callers cannot enumerate accounts.
func (s *AuthService) Authenticate(ctx context.Context, email string, password string) (model.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.User{}, model.ErrInvalidCredentials
		}
		return model.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, model.ErrInvalidCredentials
	}

	return user, nil
}

// IssueTokensFor mints the access/refresh pair for an already verified user.
func (s *AuthService) IssueTokensFor(user model.User) (model.TokenPair, error) {
	return s.tokens.IssuePair(user)
}
