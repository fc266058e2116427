package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Deliberately a single error so responses never reveal which field
	// was wrong or whether the email exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailTaken = errors.New("email already registered")

	ErrInvalidMFACode    = errors.New("invalid MFA code")
	ErrMFANotSetUp       = errors.New("MFA not set up")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled")

	// ErrMFASessionExpired is distinct from ErrInvalidMFAToken so clients
	// can prompt a fresh login rather than a code retry.
	ErrMFASessionExpired = errors.New("MFA session expired, please login again")
	ErrInvalidMFAToken   = errors.New("invalid MFA token")

	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// ValidationError carries field-level messages for malformed input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}
