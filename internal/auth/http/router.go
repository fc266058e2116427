package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/aakar745/form-registration/internal/auth/service"
	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/pkg/httpx"
	"github.com/aakar745/form-registration/pkg/jwtx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	MFAService  *service.MFAService
	UserService *service.UserService

	// LoginLimit throttles credential and TOTP guessing. Configurable so
	// tests can loosen it.
	LoginLimit httpx.RateLimitConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		LoginLimit:   httpx.LoginLimit(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn builds the request gate: token verification plus live-user
// resolution against the store.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware(r.verifier, r.resolveIdentity)
}

func (r *Router) resolveIdentity(ctx context.Context, userID string) (httpx.Identity, error) {
	u, err := r.store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return httpx.Identity{}, httpx.ErrIdentityNotFound
		}
		return httpx.Identity{}, err
	}
	return httpx.Identity{ID: u.ID, Email: u.Email, Role: u.Role}, nil
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	r.Mux.Handle("POST /auth/register", http.HandlerFunc(h.HandleRegister))

	// Login and MFA verification carry guessable secrets, so both sit
	// behind the per-IP login limit.
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.LoginLimit),
		),
	)
	r.Mux.Handle("POST /auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyMFA),
			httpx.RateLimitByIP(r.LoginLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{
		MFAService:  r.MFAService,
		UserService: r.UserService,
	}

	r.Mux.Handle("POST /auth/mfa/setup",
		httpx.Chain(http.HandlerFunc(h.HandleSetup), r.authn()))
	r.Mux.Handle("POST /auth/mfa/enable",
		httpx.Chain(http.HandlerFunc(h.HandleEnable), r.authn()))
	r.Mux.Handle("POST /auth/mfa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable), r.authn()))
}

func (r *Router) registerUsers() {
	me := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(me, r.authn()))

	h := &UsersHandler{UserService: r.UserService}
	r.Mux.Handle("GET /users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.authn(),
			httpx.RequirePermission(domain.RoleCan, "users", "read"),
		),
	)
	r.Mux.Handle("PUT /users/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
			r.authn(),
			httpx.RequirePermission(domain.RoleCan, "users", "manage"),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
