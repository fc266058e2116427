package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/aakar745/form-registration/internal/auth/service"
	"github.com/aakar745/form-registration/pkg/httpx"
	"github.com/aakar745/form-registration/pkg/slogx"
)

// UsersHandler handles the admin user-management endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

type listUsersResponse struct {
	Users []domain.SafeUser `json:"users"`
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

// HandleList handles GET /users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

// HandleUpdateRole handles PUT /users/{id}/role.
func (h *UsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := r.PathValue("id")
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "user id is required")
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "role is required")
		return
	}

	user, err := h.UserService.UpdateRole(ctx, userID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "role must be one of: user, admin")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusNotFound, "user_not_found", "no such user")
		default:
			log.Error("failed to update role", "user_id", userID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}
