package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes for the two credential kinds this service issues.
const (
	// DefaultSessionTTL is the lifetime of a full session token.
	DefaultSessionTTL = 24 * time.Hour

	// DefaultPendingTTL is the lifetime of a pending-MFA token. Deliberately
	// short since it only bridges the gap between the password check and the
	// TOTP code submission.
	DefaultPendingTTL = 5 * time.Minute
)

// Claims are the token claims used across the service. A session token
// carries email and role; a pending-MFA token carries only the subject and
// the MFAPending marker.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user. Absent on pending tokens.
	Email string `json:"email,omitempty"`

	// Role of the authenticated user ("user" or "admin"). Absent on
	// pending tokens.
	Role string `json:"role,omitempty"`

	// MFAPending marks a temporary token issued after the password check
	// but before TOTP verification. It authorizes exactly one action:
	// completing the MFA step.
	MFAPending bool `json:"mfa_pending,omitempty"`
}

// NewSessionClaims builds claims for a full session token.
func NewSessionClaims(subject, email, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, issuer, ttl, now),
		Email:            email,
		Role:             role,
	}
}

// NewPendingClaims builds claims for a pending-MFA token. No email or role
// is included so the token is useless for general API access even if a
// verifier forgets to check the MFAPending flag.
func NewPendingClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: registered(subject, issuer, ttl, now),
		MFAPending:       true,
	}
}

func registered(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
