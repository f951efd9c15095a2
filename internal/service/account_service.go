package service

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"insight-server/internal/model"
	"insight-server/pkg/apierror"
)

const bcryptCost = 12

// AccountService owns the user lifecycle: registration, profile and role
// mutation, and the two password-rewrite paths. Plaintext passwords are
// hashed here; the store only ever sees the hash.
type AccountService struct {
	users UserStore
}

func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users}
}

func (s *AccountService) Register(ctx context.Context, name string, email string, password string, role string) (model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return model.User{}, apierror.New("BAD_REQUEST", "name, email and password are required", "", http.StatusBadRequest)
	}

	parsedRole := model.RoleUser
	if strings.TrimSpace(role) != "" {
		var err error
		parsedRole, err = model.ParseRole(role)
		if err != nil {
			return model.User{}, apierror.New("BAD_REQUEST", "invalid role", role, http.StatusBadRequest)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	return s.users.Create(ctx, model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         parsedRole,
	})
}

func (s *AccountService) GetByID(ctx context.Context, id int64) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	return s.users.ExistsByEmail(ctx, email)
}

func (s *AccountService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ChangeOwnPassword rotates the caller's own password after re-verifying the
// current one. Callers cannot tell a missing account from a wrong current
// password; both surface as a failed precondition.
func (s *AccountService) ChangeOwnPassword(ctx context.Context, email string, currentPassword string, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return model.ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

// UpdatePassword is the privileged rewrite path with no current-secret
// check. Access control lives in the route table, not here.
func (s *AccountService) UpdatePassword(ctx context.Context, id int64, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return model.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	return s.users.UpdatePassword(ctx, id, string(hash))
}

func (s *AccountService) UpdateRole(ctx context.Context, id int64, role string) error {
	parsed, err := model.ParseRole(role)
	if err != nil {
		return apierror.New("BAD_REQUEST", "invalid role", role, http.StatusBadRequest)
	}

	return s.users.UpdateRole(ctx, id, parsed)
}

func (s *AccountService) UpdateProfile(ctx context.Context, id int64, name string, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return model.ErrInvalidInput
	}

	return s.users.UpdateProfile(ctx, id, name, email)
}

func (s *AccountService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
