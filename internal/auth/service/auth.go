package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/pkg/cryptox"
	"github.com/aakar745/form-registration/pkg/idx"
	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

// AuthService orchestrates registration, login and the two-step MFA login
// flow, composing the credential store, password hasher, TOTP engine and
// token issuer.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Issuer     string
	SessionTTL time.Duration
	PendingTTL time.Duration
	Policy     PasswordPolicy
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a completed authentication: a session token plus the safe
// user projection.
type AuthResult struct {
	Token string
	User  domain.SafeUser
}

// LoginResult is either a completed authentication or an MFA challenge,
// never both.
type LoginResult struct {
	// Set when login completed without MFA.
	Token string
	User  domain.SafeUser

	// Set when the account requires a TOTP code to finish logging in.
	RequireMFA bool
	TempToken  string
}

// Register creates a new user and logs them in immediately. MFA is opt-in
// after registration, so no enrollment is forced here.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	if verr := s.validateRegister(&in); verr != nil {
		return AuthResult{}, verr
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		MFAEnabled:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The store's uniqueness constraint is the authority for duplicate
	// emails; a prior existence check would just race.
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return AuthResult{}, ErrEmailTaken
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	token, err := s.signSession(user)
	if err != nil {
		return AuthResult{}, err
	}

	log.Info("user registered", "user_id", user.ID, "email", user.Email)
	return AuthResult{Token: token, User: user.Safe()}, nil
}

func (s *AuthService) validateRegister(in *RegisterInput) *ValidationError {
	fields := map[string]string{}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if in.Username == "" {
		fields["username"] = "username is required"
	}
	if in.Email == "" {
		fields["email"] = "email is required"
	} else if !validEmail(in.Email) {
		fields["email"] = "please enter a valid email address"
	}
	if in.Password == "" {
		fields["password"] = "password is required"
	} else if reason := s.Policy.Check(in.Password); reason != "" {
		fields["password"] = reason
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Login checks credentials and either completes the session or hands back
// a short-lived pending-MFA token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			log.Info("login failed", "user_id", user.ID)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	if user.MFAEnabled {
		claims := jwtx.NewPendingClaims(user.ID, s.Issuer, s.PendingTTL, time.Now().UTC())
		tempToken, err := s.Signer.Sign(claims)
		if err != nil {
			return LoginResult{}, fmt.Errorf("sign pending token: %w", err)
		}
		log.Info("login requires MFA", "user_id", user.ID)
		return LoginResult{RequireMFA: true, TempToken: tempToken}, nil
	}

	token, err := s.signSession(user)
	if err != nil {
		return LoginResult{}, err
	}

	log.Info("user logged in", "user_id", user.ID)
	return LoginResult{Token: token, User: user.Safe()}, nil
}

// VerifyMFA completes a pending login. The pending token must be valid,
// unexpired and carry the mfa_pending claim; the code must match the
// user's TOTP secret within the skew window. A wrong code does not consume
// the pending token, so the user may retry until it expires.
func (s *AuthService) VerifyMFA(ctx context.Context, code, tempToken string) (AuthResult, error) {
	log := slogx.FromContext(ctx)

	claims, err := s.Verifier.Verify(tempToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return AuthResult{}, ErrMFASessionExpired
		}
		return AuthResult{}, ErrInvalidMFAToken
	}
	if !claims.MFAPending {
		return AuthResult{}, ErrInvalidMFAToken
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, ErrInvalidMFAToken
		}
		return AuthResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if !user.MFAEnabled || user.MFASecret == nil || *user.MFASecret == "" {
		return AuthResult{}, ErrMFANotSetUp
	}

	if !validateTOTP(code, *user.MFASecret) {
		log.Warn("MFA verification failed", "user_id", user.ID)
		return AuthResult{}, ErrInvalidMFACode
	}

	token, err := s.signSession(user)
	if err != nil {
		return AuthResult{}, err
	}

	log.Info("MFA verified", "user_id", user.ID)
	return AuthResult{Token: token, User: user.Safe()}, nil
}

func (s *AuthService) signSession(u domain.User) (string, error) {
	claims := jwtx.NewSessionClaims(u.ID, u.Email, u.Role, s.Issuer, s.SessionTTL, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
