package http

import (
	"errors"
	"net/http"

	"github.com/aakar745/form-registration/internal/auth/service"
	"github.com/aakar745/form-registration/pkg/httpx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

// MeHandler handles GET /auth/me: the live user record behind the session
// token, projected without credentials.
type MeHandler struct {
	UserService *service.UserService
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	user, err := h.UserService.GetUserByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "user no longer exists")
			return
		}
		log.Error("failed to load user", "user_id", id.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user.Safe())
}
