package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the wire shape for every error this service returns:
// a stable machine-readable code plus a human message.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	RequireMFA       bool   `json:"require_mfa,omitempty"`
	Fields           any    `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code. Responses
// from auth endpoints carry credentials, so caching is always disabled.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standard error payload.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	WriteJSON(w, status, ErrorResponse{Error: code, ErrorDescription: description})
}

// NoCache sets Cache-Control and Pragma headers to prevent caching.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
