package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aakar745/form-registration/internal/auth/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, username, password_hash, role, mfa_secret, mfa_enabled, created_at, updated_at`

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	// email column is COLLATE NOCASE, so the comparison is case-insensitive.
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, role, mfa_secret, mfa_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Role,
		mapOptionalString(u.MFASecret), u.MFAEnabled, u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) UpdateRole(ctx context.Context, userID, role string) error {
	return r.exec(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now().UTC(), userID)
}

func (r *usersRepo) UpdateMFASecret(ctx context.Context, userID, secret string) error {
	return r.exec(ctx,
		`UPDATE users SET mfa_secret = ?, updated_at = ? WHERE id = ?`,
		secret, time.Now().UTC(), userID)
}

func (r *usersRepo) EnableMFA(ctx context.Context, userID string) error {
	return r.exec(ctx,
		`UPDATE users SET mfa_enabled = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
}

func (r *usersRepo) DisableMFA(ctx context.Context, userID string) error {
	return r.exec(ctx,
		`UPDATE users SET mfa_enabled = 0, mfa_secret = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), userID)
}

func (r *usersRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		mfaSecret sql.NullString
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&mfaSecret, &u.MFAEnabled, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.MFASecret = mapNullStringPtr(mfaSecret)
	return u, nil
}
