package repository

import (
	"context"

	"tasktracker/internal/domain"
)

// UserRepository defines persistence operations for accounts. Create returns
// domain.ErrDuplicateEmail on a unique violation; lookups return
// domain.ErrUserNotFound.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
