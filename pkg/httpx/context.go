package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyEmail  ctxKey = "email"
	CtxKeyRole   ctxKey = "role"
)

// Identity is the resolved caller attached to the request context by
// AuthnMiddleware.
type Identity struct {
	ID    string
	Email string
	Role  string
}

func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.ID)
	ctx = context.WithValue(ctx, CtxKeyEmail, id.Email)
	return context.WithValue(ctx, CtxKeyRole, id.Role)
}

// IdentityFromContext returns the caller identity, or ok=false when the
// request did not pass through AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	if !ok || id == "" {
		return Identity{}, false
	}
	email, _ := ctx.Value(CtxKeyEmail).(string)
	role, _ := ctx.Value(CtxKeyRole).(string)
	return Identity{ID: id, Email: email, Role: role}, true
}

func roleFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}
