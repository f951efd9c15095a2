package service

import (
	"context"

	"insight-server/internal/model"
)

// UserStore is the persistence contract the services depend on. The pgx
// repository implements it in production; tests substitute an in-memory copy.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateProfile(ctx context.Context, id int64, name string, email string) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	UpdateProfilePhoto(ctx context.Context, id int64, path *string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}
