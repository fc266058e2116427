package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer turns claims into a signed JWT string.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a JWT string and returns the claims if it is legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMissingSecret = errors.New("jwtx: signing secret is empty")

	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrIssuer     = errors.New("jwtx: issuer mismatch")
)

// HS256 signs and verifies tokens with a single shared HMAC-SHA256 secret.
// It implements both Signer and Verifier.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds an HS256 signer/verifier. The secret must be non-empty;
// a process without one cannot mint or check credentials and must not start.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

func (h *HS256) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(h.secret)
}

// Verify parses and validates a token, checking signature, expiry, nbf and
// issuer. The returned error distinguishes expiry from other failures so
// callers can tell clients whether to re-login or give up.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return h.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return Claims{}, ErrIssuer
		default:
			return Claims{}, ErrMalformed
		}
	}
	return claims, nil
}
