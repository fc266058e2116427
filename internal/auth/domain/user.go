package domain

import "time"

type User struct {
	ID           string
	Email        string // unique, stored lowercase
	Username     string
	PasswordHash string  // argon2id encoded, never serialized outward
	Role         string  // "user" or "admin"
	MFASecret    *string // TOTP secret (nullable, base32 encoded)
	MFAEnabled   bool    // true only after a setup code has been verified
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser is the projection returned to clients. Secrets never leave the
// service, so neither PasswordHash nor MFASecret has a place here.
type SafeUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	RequireMFA bool   `json:"require_mfa"`
}

// Safe strips secrets from a user record.
func (u User) Safe() SafeUser {
	return SafeUser{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Role:       u.Role,
		RequireMFA: u.MFAEnabled,
	}
}
