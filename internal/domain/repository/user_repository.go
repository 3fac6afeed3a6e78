package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/todo-api/internal/domain/entity"
)

// ErrNotFound is returned by repositories when no live row matches.
var ErrNotFound = errors.New("not found")

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
