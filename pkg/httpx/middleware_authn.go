package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

// ErrIdentityNotFound is returned by an IdentityResolver when the token
// subject no longer maps to a live user record.
var ErrIdentityNotFound = errors.New("httpx: identity not found")

// IdentityResolver maps a verified token subject to a live caller identity.
// Resolving against storage on every request means deleted users lose
// access immediately even while their tokens are still unexpired.
type IdentityResolver func(ctx context.Context, userID string) (Identity, error)

// AuthnMiddleware is the request gate for session-authenticated routes. It
// extracts and verifies the bearer token, rejects pending-MFA tokens, and
// attaches the resolved identity to the request context.
func AuthnMiddleware(v jwtx.Verifier, resolve IdentityResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing_token", "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					writeBearerError(w, "token_expired", "token expired")
					return
				}
				log.Warn("jwt verify failed", "err", err)
				writeBearerError(w, "invalid_token", "token verification failed")
				return
			}

			// A pending-MFA token only authorizes the MFA verify endpoint,
			// never general API access.
			if claims.MFAPending {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="MFA verification required"`)
				WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:            "mfa_required",
					ErrorDescription: "MFA verification required",
					RequireMFA:       true,
				})
				return
			}

			// Do not trust stale claims: the subject must still exist.
			identity, err := resolve(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, ErrIdentityNotFound) {
					writeBearerError(w, "user_not_found", "user no longer exists")
					return
				}
				log.Error("identity resolution failed", "err", err)
				WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, identity)))
		})
	}
}

// RFC 6750-style error response for bearer auth failures.
func writeBearerError(w http.ResponseWriter, code, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Error: code, ErrorDescription: desc})
}
