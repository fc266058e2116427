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

// AuthHandler handles the public authentication endpoints: registration,
// login and pending-MFA verification.
type AuthHandler struct {
	AuthService *service.AuthService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyMFARequest struct {
	Code      string `json:"code"`
	TempToken string `json:"temp_token"`
}

type tokenResponse struct {
	Token string          `json:"token"`
	User  domain.SafeUser `json:"user"`
}

type mfaChallengeResponse struct {
	RequireMFA bool   `json:"require_mfa"`
	TempToken  string `json:"temp_token"`
}

// HandleRegister handles POST /auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.AuthService.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			httpx.WriteJSON(w, http.StatusBadRequest, httpx.ErrorResponse{
				Error:            "validation_error",
				ErrorDescription: verr.Error(),
				Fields:           verr.Fields,
			})
		case errors.Is(err, service.ErrEmailTaken):
			httpx.WriteError(w, http.StatusConflict, "already_exists", "email is already registered")
		default:
			log.Error("registration failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, tokenResponse{Token: res.Token, User: res.User})
}

// HandleLogin handles POST /auth/login. Accounts with MFA enabled receive
// a short-lived pending token instead of a session token.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	res, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	if res.RequireMFA {
		httpx.WriteJSON(w, http.StatusOK, mfaChallengeResponse{
			RequireMFA: true,
			TempToken:  res.TempToken,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: res.Token, User: res.User})
}

// HandleVerifyMFA handles POST /auth/mfa/verify, the second step of an
// MFA login. It is unauthenticated: the pending token in the body is the
// credential.
func (h *AuthHandler) HandleVerifyMFA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req verifyMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Code == "" || req.TempToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code and temp_token are required")
		return
	}

	res, err := h.AuthService.VerifyMFA(ctx, req.Code, req.TempToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMFASessionExpired):
			httpx.WriteError(w, http.StatusUnauthorized, "token_expired", service.ErrMFASessionExpired.Error())
		case errors.Is(err, service.ErrInvalidMFAToken):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid MFA token")
		case errors.Is(err, service.ErrInvalidMFACode):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_code", "invalid MFA code")
		case errors.Is(err, service.ErrMFANotSetUp):
			httpx.WriteError(w, http.StatusBadRequest, "mfa_not_set_up", "MFA is not enabled for this user")
		default:
			log.Error("MFA verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse{Token: res.Token, User: res.User})
}
