package repository

import (
	"context"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]entity.User, int, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	// Delete removes the user together with their recipes, favorites,
	// cart entries and follow relationships.
	Delete(ctx context.Context, id int64) error
}
