package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/internal/auth/store/drivers/sqlite"
	"github.com/aakar745/form-registration/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestUser(email string) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     "tester",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newTestUser("alice@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, byID.Email)
	require.Equal(t, u.PasswordHash, byID.PasswordHash)
	require.False(t, byID.MFAEnabled)
	require.Nil(t, byID.MFASecret)

	byEmail, err := st.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
}

func TestGetUserByEmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Users().CreateUser(ctx, newTestUser("alice@example.com")))

	got, err := st.Users().GetUserByEmail(ctx, "ALICE@Example.COM")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", got.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	require.NoError(t, st.Users().CreateUser(ctx, newTestUser("dup@example.com")))

	err := st.Users().CreateUser(ctx, newTestUser("dup@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Uniqueness is case-insensitive too.
	err = st.Users().CreateUser(ctx, newTestUser("DUP@example.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetUserNotFound(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, err := st.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMFALifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newTestUser("mfa@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	// Store a secret: mid-setup state, enabled stays false.
	require.NoError(t, st.Users().UpdateMFASecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.MFASecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.MFASecret)
	require.False(t, got.MFAEnabled)

	// Restarting setup overwrites the in-progress secret.
	require.NoError(t, st.Users().UpdateMFASecret(ctx, u.ID, "NEWSECRETNEWSECR"))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "NEWSECRETNEWSECR", *got.MFASecret)

	require.NoError(t, st.Users().EnableMFA(ctx, u.ID))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, got.MFAEnabled)
	require.NotNil(t, got.MFASecret)

	// Disable clears both flag and secret.
	require.NoError(t, st.Users().DisableMFA(ctx, u.ID))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.MFAEnabled)
	require.Nil(t, got.MFASecret)
}

func TestUpdateRoleAndList(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := newTestUser("first@example.com")
	require.NoError(t, st.Users().CreateUser(ctx, u))

	second := newTestUser("second@example.com")
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	second.UpdatedAt = second.CreatedAt
	require.NoError(t, st.Users().CreateUser(ctx, second))

	require.NoError(t, st.Users().UpdateRole(ctx, u.ID, domain.RoleAdmin))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)

	users, err := st.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "second@example.com", users[0].Email) // newest first

	err = st.Users().UpdateRole(ctx, idx.New().String(), domain.RoleAdmin)
	require.ErrorIs(t, err, store.ErrNotFound)
}
