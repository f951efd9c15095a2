package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"insight-server/internal/model"
	"insight-server/internal/repository"
	"insight-server/pkg/apierror"
)

func TestAccountService_Register(t *testing.T) {
	t.Run("defaults to USER role", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		user, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", "")
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, user.Role)
		assert.NotEqual(t, "secret123", user.PasswordHash)

		err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123"))
		assert.NoError(t, err)
	})

	t.Run("explicit admin role", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		user, err := svc.Register(context.Background(), "Root", "root@example.com", "secret123", "ADMIN")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, user.Role)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		_, err := svc.Register(context.Background(), "Eve", "eve@example.com", "secret123", "SUPERUSER")
		require.Error(t, err)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "BAD_REQUEST", apiErr.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		_, err := svc.Register(context.Background(), "", "alice@example.com", "secret123", "")
		assert.Error(t, err)

		_, err = svc.Register(context.Background(), "Alice", "", "secret123", "")
		assert.Error(t, err)

		_, err = svc.Register(context.Background(), "Alice", "alice@example.com", "", "")
		assert.Error(t, err)
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", "")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "Alice Again", "alice@example.com", "other456", "")
		assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	})
}

func TestAccountService_ChangeOwnPassword(t *testing.T) {
	t.Run("rotates after verifying current secret", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		user := seedUser(t, store, "alice@example.com", "old-secret", model.RoleUser)

		err := svc.ChangeOwnPassword(context.Background(), "alice@example.com", "old-secret", "new-secret")
		require.NoError(t, err)

		updated, err := store.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-secret")))
		assert.Error(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("old-secret")))
	})

	t.Run("wrong current secret leaves hash unchanged", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		user := seedUser(t, store, "alice@example.com", "old-secret", model.RoleUser)
		before, err := store.FindByID(context.Background(), user.ID)
		require.NoError(t, err)

		err = svc.ChangeOwnPassword(context.Background(), "alice@example.com", "not-the-secret", "new-secret")
		assert.ErrorIs(t, err, model.ErrInvalidCredentials)

		after, err := store.FindByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, before.PasswordHash, after.PasswordHash)
	})

	t.Run("unknown account", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		err := svc.ChangeOwnPassword(context.Background(), "nobody@example.com", "x", "new-secret")
		assert.ErrorIs(t, err, model.ErrUserNotFound)
	})

	t.Run("empty new password", func(t *testing.T) {
		store := repository.NewMemoryUserStore()
		svc := NewAccountService(store)

		seedUser(t, store, "alice@example.com", "old-secret", model.RoleUser)

		err := svc.ChangeOwnPassword(context.Background(), "alice@example.com", "old-secret", "  ")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestAccountService_UpdatePassword(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewAccountService(store)

	user := seedUser(t, store, "alice@example.com", "old-secret", model.RoleUser)

	// The privileged path does not require the current secret.
	err := svc.UpdatePassword(context.Background(), user.ID, "admin-set")
	require.NoError(t, err)

	updated, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("admin-set")))

	err = svc.UpdatePassword(context.Background(), 9999, "whatever")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestAccountService_UpdateRole(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewAccountService(store)

	user := seedUser(t, store, "alice@example.com", "secret", model.RoleUser)

	require.NoError(t, svc.UpdateRole(context.Background(), user.ID, "ADMIN"))

	updated, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, updated.Role)

	err = svc.UpdateRole(context.Background(), user.ID, "WIZARD")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BAD_REQUEST", apiErr.Code)
}

func TestAccountService_UpdateProfile(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewAccountService(store)

	user := seedUser(t, store, "alice@example.com", "secret", model.RoleUser)

	require.NoError(t, svc.UpdateProfile(context.Background(), user.ID, "Alice B", "aliceb@example.com"))

	updated, err := store.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "aliceb@example.com", updated.Email)

	err = svc.UpdateProfile(context.Background(), user.ID, "", "aliceb@example.com")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestAccountService_Delete(t *testing.T) {
	store := repository.NewMemoryUserStore()
	svc := NewAccountService(store)

	user := seedUser(t, store, "alice@example.com", "secret", model.RoleUser)

	require.NoError(t, svc.Delete(context.Background(), user.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), user.ID), model.ErrUserNotFound)

	_, err := store.FindByID(context.Background(), user.ID)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}
