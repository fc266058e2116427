package store

import (
	"context"
	"errors"

	"github.com/aakar745/form-registration/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it; the auth service only ever sees this contract,
// so the credential store is swappable without touching the service.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks a user up by email, case-insensitively. Used
	// during login and duplicate-registration checks.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// A duplicate email surfaces as ErrAlreadyExists: the UNIQUE constraint
	// is the authority for the register/register race, not a prior lookup.
	CreateUser(ctx context.Context, u domain.User) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// UpdateRole sets the user's role and bumps updated_at.
	UpdateRole(ctx context.Context, userID, role string) error

	// UpdateMFASecret stores a TOTP secret without enabling MFA. Setup can
	// restart at any time; the new secret overwrites any in-progress one.
	UpdateMFASecret(ctx context.Context, userID, secret string) error

	// EnableMFA flips mfa_enabled on. The secret must already be stored.
	EnableMFA(ctx context.Context, userID string) error

	// DisableMFA clears both mfa_enabled and mfa_secret.
	DisableMFA(ctx context.Context, userID string) error
}
