package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMFASetupBeforeEnableCanBeRepeated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	first, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)

	// A second setup replaces the stored secret.
	second, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	// Only the latest secret enables.
	require.ErrorIs(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, first.Secret)), ErrInvalidMFACode)
	require.NoError(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, second.Secret)))
}

func TestMFASetupRejectedWhenAlreadyEnabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	setup, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NoError(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, setup.Secret)))

	_, err = env.mfa.Setup(ctx, reg.User.ID)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)

	require.ErrorIs(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, setup.Secret)), ErrMFAAlreadyEnabled)
}

func TestMFAEnableRequiresSetup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	require.ErrorIs(t, env.mfa.Enable(ctx, reg.User.ID, "123456"), ErrMFANotSetUp)
}

func TestMFAEnableWrongCodeKeepsSecret(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	setup, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)

	require.ErrorIs(t, env.mfa.Enable(ctx, reg.User.ID, "000000"), ErrInvalidMFACode)

	// The stored secret survives a failed attempt.
	require.NoError(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, setup.Secret)))
}

func TestMFADisableIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	setup, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NoError(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, setup.Secret)))

	require.NoError(t, env.mfa.Disable(ctx, reg.User.ID))
	require.NoError(t, env.mfa.Disable(ctx, reg.User.ID))

	u, err := env.auth.Store.Users().GetUserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.False(t, u.MFAEnabled)
	require.Nil(t, u.MFASecret)

	// Login no longer demands a second step.
	res, err := env.auth.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	require.False(t, res.RequireMFA)
	require.NotEmpty(t, res.Token)
}

func TestMFAUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.mfa.Setup(ctx, "01JUNKNOWNUSERID0000000000")
	require.ErrorIs(t, err, ErrUserNotFound)

	require.ErrorIs(t, env.mfa.Enable(ctx, "01JUNKNOWNUSERID0000000000", "123456"), ErrUserNotFound)
	require.ErrorIs(t, env.mfa.Disable(ctx, "01JUNKNOWNUSERID0000000000"), ErrUserNotFound)
}

func TestValidateTOTP(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reg := register(t, env, "alice@example.com")

	setup, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)

	require.True(t, validateTOTP(currentCode(t, setup.Secret), setup.Secret))
	require.False(t, validateTOTP("000000", setup.Secret))
	require.False(t, validateTOTP("", setup.Secret))
}
