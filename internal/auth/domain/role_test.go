package domain_test

import (
	"testing"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRoleCan(t *testing.T) {
	t.Parallel()

	require.True(t, domain.RoleCan(domain.RoleAdmin, "users", "manage"))
	require.True(t, domain.RoleCan(domain.RoleUser, "forms", "create"))

	require.False(t, domain.RoleCan(domain.RoleUser, "users", "read"))
	require.False(t, domain.RoleCan(domain.RoleUser, "forms", "manage"))
	require.False(t, domain.RoleCan("unknown", "forms", "read"))
	require.False(t, domain.RoleCan(domain.RoleAdmin, "unknown", "read"))
}

func TestValidRole(t *testing.T) {
	t.Parallel()

	require.True(t, domain.ValidRole("user"))
	require.True(t, domain.ValidRole("admin"))
	require.False(t, domain.ValidRole("manager"))
	require.False(t, domain.ValidRole(""))
}

func TestSafeStripsSecrets(t *testing.T) {
	t.Parallel()

	secret := "JBSWY3DPEHPK3PXP"
	u := domain.User{
		ID:           "01ARZ3NDEKTSV4RRFFQ69G5FAV",
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Role:         domain.RoleUser,
		MFASecret:    &secret,
		MFAEnabled:   true,
	}

	safe := u.Safe()
	require.Equal(t, u.ID, safe.ID)
	require.Equal(t, u.Email, safe.Email)
	require.Equal(t, u.Username, safe.Username)
	require.Equal(t, u.Role, safe.Role)
	require.True(t, safe.RequireMFA)
}
