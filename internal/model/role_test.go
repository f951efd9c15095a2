package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Run("known roles", func(t *testing.T) {
		role, err := ParseRole("USER")
		require.NoError(t, err)
		assert.Equal(t, RoleUser, role)

		role, err = ParseRole("ADMIN")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})

	t.Run("case and whitespace tolerant", func(t *testing.T) {
		role, err := ParseRole(" admin ")
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, role)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, err := ParseRole("SUPERUSER")
		assert.ErrorIs(t, err, ErrInvalidRole)

		_, err = ParseRole("")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("GUEST").Valid())
	assert.False(t, Role("").Valid())
}
