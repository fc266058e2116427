package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aakar745/form-registration/internal/auth/domain"
	"github.com/aakar745/form-registration/internal/auth/store"
	"github.com/aakar745/form-registration/pkg/slogx"
)

type UserService struct {
	Store store.Store
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// ListUsers returns safe projections of every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.SafeUser, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	safe := make([]domain.SafeUser, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Safe())
	}
	return safe, nil
}

// UpdateRole changes a user's role after validating it.
func (s *UserService) UpdateRole(ctx context.Context, userID, role string) (domain.SafeUser, error) {
	log := slogx.FromContext(ctx)

	if !domain.ValidRole(role) {
		return domain.SafeUser{}, ErrInvalidRole
	}

	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SafeUser{}, ErrUserNotFound
		}
		return domain.SafeUser{}, fmt.Errorf("update role: %w", err)
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.SafeUser{}, fmt.Errorf("reload user: %w", err)
	}

	log.Info("role updated", "user_id", userID, "role", role)
	return u.Safe(), nil
}
