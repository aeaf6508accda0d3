package repository

import (
	"context"

	"taskmind/internal/domain"
)

// UserUpdate carries the mutable profile fields. Nil means keep the current
// value.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// UserRepository defines persistence operations for User entities.
// Email lookups are case-insensitive.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateByID(ctx context.Context, id int64, update UserUpdate) (*domain.User, error)
}
