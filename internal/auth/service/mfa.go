package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// totpSkew is the clock tolerance in 30s steps either side of now, giving
// a ~60s skew budget for authenticator apps.
const totpSkew = 1

// MFAService handles TOTP enrollment for an already authenticated session:
// setup stores a fresh secret, enable verifies the first code, disable
// clears everything.
type MFAService struct {
	Store  store.Store
	Issuer string // issuer name embedded in the provisioning URI
}

// SetupResult is what the client needs to render an enrollment QR code.
type SetupResult struct {
	Secret          string // base32 secret, for manual entry
	ProvisioningURI string // otpauth:// URL
}

// Setup generates a fresh TOTP secret for the user and stores it without
// enabling MFA. Restarting setup is always safe: the new secret simply
// overwrites any in-progress one.
func (s *MFAService) Setup(ctx context.Context, userID string) (SetupResult, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SetupResult{}, ErrUserNotFound
		}
		return SetupResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.MFAEnabled {
		return SetupResult{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: user.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return SetupResult{}, fmt.Errorf("generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return SetupResult{}, fmt.Errorf("store MFA secret: %w", err)
	}

	log.Info("MFA setup initiated", "user_id", userID)
	return SetupResult{Secret: key.Secret(), ProvisioningURI: key.URL()}, nil
}

// Enable verifies a code against the secret stored during Setup and, on
// success, flips MFA on. On failure the secret stays stored so the user
// can retry without re-scanning the QR code.
func (s *MFAService) Enable(ctx context.Context, userID, code string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}
	if user.MFAEnabled {
		return ErrMFAAlreadyEnabled
	}
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotSetUp
	}

	if !validateTOTP(code, *user.MFASecret) {
		return ErrInvalidMFACode
	}

	if err := s.Store.Users().EnableMFA(ctx, userID); err != nil {
		return fmt.Errorf("enable MFA: %w", err)
	}

	log.Info("MFA enabled", "user_id", userID)
	return nil
}

// Disable turns MFA off and clears the stored secret. Idempotent: calling
// it on an already-disabled account is a no-op success.
//
// Note this does not re-verify a current TOTP code before disabling; the
// session token alone authorizes it. That is a deliberate simplification
// worth revisiting.
func (s *MFAService) Disable(ctx context.Context, userID string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.Store.Users().GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Store.Users().DisableMFA(ctx, userID); err != nil {
		return fmt.Errorf("disable MFA: %w", err)
	}

	log.Info("MFA disabled", "user_id", userID)
	return nil
}

// validateTOTP checks a 6-digit code against a base32 secret with the
// service-wide skew tolerance.
func validateTOTP(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
