package httpx

import "net/http"

// PermissionChecker answers whether a role may perform an action on a
// resource. The concrete capability table lives in the domain package.
type PermissionChecker func(role, resource, action string) bool

// RequirePermission gates a route on the caller's role having a capability.
// It must run after AuthnMiddleware so the role is in context.
func RequirePermission(can PermissionChecker, resource, action string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := roleFromCtx(r.Context())
			if role == "" || !can(role, resource, action) {
				WriteError(w, http.StatusForbidden, "permission_denied", "permission denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
