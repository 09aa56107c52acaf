package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active profile", func(t *testing.T) {
		user, err := NewUser("Demo@Company.com", "Demo User", RoleAdmin)
		require.NoError(t, err)

		assert.Equal(t, "demo@company.com", user.Email)
		assert.True(t, user.IsActive)
		assert.Empty(t, user.PasswordHash)
		assert.True(t, user.CanSignIn())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "Demo User", RoleMember)
		require.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("demo@company.com", "Demo User", "owner")
		require.Error(t, err)
	})
}

func TestUserPassword(t *testing.T) {
	t.Run("set and verify round trip", func(t *testing.T) {
		user, err := NewUserWithPassword("demo@company.com", "Demo User", "correct-horse", RoleMember)
		require.NoError(t, err)

		assert.True(t, user.VerifyPassword("correct-horse"))
		assert.False(t, user.VerifyPassword("wrong"))
	})

	t.Run("short passwords are rejected", func(t *testing.T) {
		user, err := NewUser("demo@company.com", "Demo User", RoleMember)
		require.NoError(t, err)
		require.Error(t, user.SetPassword("short"))
	})

	t.Run("profile without credentials never verifies", func(t *testing.T) {
		user, err := NewUser("demo@company.com", "Demo User", RoleMember)
		require.NoError(t, err)
		assert.False(t, user.VerifyPassword(""))
	})
}

func TestUserLifecycle(t *testing.T) {
	t.Run("deactivation blocks sign-in", func(t *testing.T) {
		user, err := NewUser("demo@company.com", "Demo User", RoleMember)
		require.NoError(t, err)

		user.Deactivate()
		assert.False(t, user.CanSignIn())

		user.Activate()
		assert.True(t, user.CanSignIn())
	})

	t.Run("empty department normalizes to nil", func(t *testing.T) {
		user, err := NewUser("demo@company.com", "Demo User", RoleMember)
		require.NoError(t, err)

		empty := "  "
		user.SetDepartment(&empty)
		assert.Nil(t, user.Department)

		dept := "Development"
		user.SetDepartment(&dept)
		require.NotNil(t, user.Department)
		assert.Equal(t, "Development", *user.Department)
	})

	t.Run("login is stamped", func(t *testing.T) {
		user, err := NewUser("demo@company.com", "Demo User", RoleMember)
		require.NoError(t, err)
		require.Nil(t, user.LastLoginAt)

		user.RecordLogin()
		assert.NotNil(t, user.LastLoginAt)
	})
}
