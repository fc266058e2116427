package service

import (
	"context"
	"testing"
	"time"

	"github.com/aakar745/form-registration/internal/auth/store/drivers/sqlite"
	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

const testIssuer = "form-registration-test"

type testEnv struct {
	auth  *AuthService
	mfa   *MFAService
	users *UserService
	codec *jwtx.HS256
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	codec, err := jwtx.NewHS256([]byte("test-signing-secret-0123456789ab"), testIssuer)
	require.NoError(t, err)

	return testEnv{
		auth: &AuthService{
			Store:      st,
			Signer:     codec,
			Verifier:   codec,
			Issuer:     testIssuer,
			SessionTTL: jwtx.DefaultSessionTTL,
			PendingTTL: jwtx.DefaultPendingTTL,
			Policy:     DefaultPasswordPolicy(),
		},
		mfa:   &MFAService{Store: st, Issuer: "FormRegistration"},
		users: &UserService{Store: st},
		codec: codec,
	}
}

func register(t *testing.T, env testEnv, email string) AuthResult {
	t.Helper()
	res, err := env.auth.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    email,
		Password: "Str0ng!Pass",
	})
	require.NoError(t, err)
	return res
}

func currentCode(t *testing.T, secret string) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestRegisterIssuesSessionToken(t *testing.T) {
	env := newTestEnv(t)

	res := register(t, env, "alice@example.com")
	require.NotEmpty(t, res.Token)
	require.Equal(t, "alice@example.com", res.User.Email)
	require.Equal(t, "user", res.User.Role)
	require.False(t, res.User.RequireMFA)

	claims, err := env.codec.Verify(res.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, claims.Subject)
	require.Equal(t, "alice@example.com", claims.Email)
	require.False(t, claims.MFAPending)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice@example.com")

	_, err := env.auth.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "alice@example.com",
		Password: "An0ther!Pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	// Same address with different case is still a duplicate.
	_, err = env.auth.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "ALICE@example.com",
		Password: "An0ther!Pass",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing username", RegisterInput{Email: "a@b.co", Password: "Str0ng!Pass"}, "username"},
		{"missing email", RegisterInput{Username: "a", Password: "Str0ng!Pass"}, "email"},
		{"malformed email", RegisterInput{Username: "a", Email: "not-an-email", Password: "Str0ng!Pass"}, "email"},
		{"missing password", RegisterInput{Username: "a", Email: "a@b.co"}, "password"},
		{"short password", RegisterInput{Username: "a", Email: "a@b.co", Password: "S0r!t"}, "password"},
		{"no uppercase", RegisterInput{Username: "a", Email: "a@b.co", Password: "weak!pass1"}, "password"},
		{"no lowercase", RegisterInput{Username: "a", Email: "a@b.co", Password: "WEAK!PASS1"}, "password"},
		{"no digit", RegisterInput{Username: "a", Email: "a@b.co", Password: "Weak!Pass"}, "password"},
		{"no symbol", RegisterInput{Username: "a", Email: "a@b.co", Password: "Weak1Pass"}, "password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestLoginWithoutMFA(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "alice@example.com")

	res, err := env.auth.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	require.False(t, res.RequireMFA)
	require.Empty(t, res.TempToken)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "alice@example.com", res.User.Email)

	// Email lookup is case-insensitive.
	res, err = env.auth.Login(ctx, "Alice@Example.COM", "Str0ng!Pass")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
}

func TestLoginInvalidCredentialsAreUniform(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "alice@example.com")

	_, badPassword := env.auth.Login(ctx, "alice@example.com", "Wr0ng!Pass")
	_, unknownEmail := env.auth.Login(ctx, "nobody@example.com", "Str0ng!Pass")

	require.ErrorIs(t, badPassword, ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	// Identical error: the response must not reveal whether the email exists.
	require.Equal(t, badPassword, unknownEmail)

	_, err := env.auth.Login(ctx, "", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestFullMFALoginFlow walks the whole protocol: register, set up MFA,
// enable it, log in again to receive a pending token, fail a code, then
// complete verification with a valid code.
func TestFullMFALoginFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := register(t, env, "alice@example.com")
	userID := reg.User.ID

	setup, err := env.mfa.Setup(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.Contains(t, setup.ProvisioningURI, "alice@example.com")
	require.Contains(t, setup.ProvisioningURI, "FormRegistration")

	require.NoError(t, env.mfa.Enable(ctx, userID, currentCode(t, setup.Secret)))

	// Login now requires MFA and returns only a pending token.
	login, err := env.auth.Login(ctx, "alice@example.com", "Str0ng!Pass")
	require.NoError(t, err)
	require.True(t, login.RequireMFA)
	require.NotEmpty(t, login.TempToken)
	require.Empty(t, login.Token)

	// The pending token carries no email or role.
	claims, err := env.codec.Verify(login.TempToken)
	require.NoError(t, err)
	require.True(t, claims.MFAPending)
	require.Empty(t, claims.Email)
	require.Empty(t, claims.Role)

	// Wrong code fails but does not consume the pending token.
	_, err = env.auth.VerifyMFA(ctx, "000000", login.TempToken)
	require.ErrorIs(t, err, ErrInvalidMFACode)

	res, err := env.auth.VerifyMFA(ctx, currentCode(t, setup.Secret), login.TempToken)
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, userID, res.User.ID)

	sessionClaims, err := env.codec.Verify(res.Token)
	require.NoError(t, err)
	require.False(t, sessionClaims.MFAPending)
	require.Equal(t, "alice@example.com", sessionClaims.Email)
}

func TestVerifyMFAExpiredPendingToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := register(t, env, "alice@example.com")
	setup, err := env.mfa.Setup(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NoError(t, env.mfa.Enable(ctx, reg.User.ID, currentCode(t, setup.Secret)))

	// Pending token issued long enough ago that its 5 minute life is over.
	stale := jwtx.NewPendingClaims(reg.User.ID, testIssuer, jwtx.DefaultPendingTTL, time.Now().UTC().Add(-10*time.Minute))
	expired, err := env.codec.Sign(stale)
	require.NoError(t, err)

	// Even a correct code cannot rescue an expired MFA session.
	_, err = env.auth.VerifyMFA(ctx, currentCode(t, setup.Secret), expired)
	require.ErrorIs(t, err, ErrMFASessionExpired)
}

func TestVerifyMFARejectsNonPendingTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	reg := register(t, env, "alice@example.com")

	// A full session token is not a pending token.
	_, err := env.auth.VerifyMFA(ctx, "123456", reg.Token)
	require.ErrorIs(t, err, ErrInvalidMFAToken)

	_, err = env.auth.VerifyMFA(ctx, "123456", "garbage.token.value")
	require.ErrorIs(t, err, ErrInvalidMFAToken)
}
