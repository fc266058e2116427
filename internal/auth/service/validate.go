package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// PasswordPolicy is the minimum-strength policy enforced before hashing.
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// DefaultPasswordPolicy requires 8+ characters with uppercase, lowercase,
// digit and symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:     8,
		RequireUpper:  true,
		RequireLower:  true,
		RequireDigit:  true,
		RequireSymbol: true,
	}
}

// Check returns a human-readable reason the password fails the policy, or
// "" when it passes.
func (p PasswordPolicy) Check(password string) string {
	if len(password) < p.MinLength {
		return fmt.Sprintf("password must be at least %d characters long", p.MinLength)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	switch {
	case p.RequireUpper && !hasUpper:
		return "password must contain an uppercase letter"
	case p.RequireLower && !hasLower:
		return "password must contain a lowercase letter"
	case p.RequireDigit && !hasDigit:
		return "password must contain a digit"
	case p.RequireSymbol && !hasSymbol:
		return "password must contain a symbol"
	}
	return ""
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// normalizeEmail lowercases and trims an email so the same address always
// hits the same user record.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
