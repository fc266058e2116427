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

// MFAHandler handles the session-authenticated MFA management endpoints.
type MFAHandler struct {
	MFAService  *service.MFAService
	UserService *service.UserService
}

type mfaEnableRequest struct {
	Code string `json:"code"`
}

type mfaSetupResponse struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

type mfaStatusResponse struct {
	Message string          `json:"message"`
	User    domain.SafeUser `json:"user"`
}

// HandleSetup handles POST /auth/mfa/setup. Generates a fresh secret and
// returns it with the otpauth provisioning URI; MFA stays off until the
// user confirms a code via enable.
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	setup, err := h.MFAService.Setup(ctx, id.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			httpx.WriteError(w, http.StatusBadRequest, "mfa_already_enabled", "MFA is already enabled")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "user no longer exists")
		default:
			log.Error("MFA setup failed", "user_id", id.ID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfaSetupResponse{
		Secret: setup.Secret,
		QRCode: setup.ProvisioningURI,
	})
}

// HandleEnable handles POST /auth/mfa/enable. Confirms the code against
// the secret stored during setup and turns MFA on.
func (h *MFAHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	var req mfaEnableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	if err := h.MFAService.Enable(ctx, id.ID, req.Code); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMFACode):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_code", "invalid MFA code")
		case errors.Is(err, service.ErrMFANotSetUp):
			httpx.WriteError(w, http.StatusBadRequest, "mfa_not_set_up", "run MFA setup first")
		case errors.Is(err, service.ErrMFAAlreadyEnabled):
			httpx.WriteError(w, http.StatusBadRequest, "mfa_already_enabled", "MFA is already enabled")
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "user no longer exists")
		default:
			log.Error("MFA enable failed", "user_id", id.ID, "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "MFA enabled"})
}

// HandleDisable handles POST /auth/mfa/disable. Idempotent.
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "authentication required")
		return
	}

	if err := h.MFAService.Disable(ctx, id.ID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteError(w, http.StatusUnauthorized, "user_not_found", "user no longer exists")
			return
		}
		log.Error("MFA disable failed", "user_id", id.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	user, err := h.UserService.GetUserByID(ctx, id.ID)
	if err != nil {
		log.Error("failed to reload user", "user_id", id.ID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, mfaStatusResponse{
		Message: "MFA disabled",
		User:    user.Safe(),
	})
}
