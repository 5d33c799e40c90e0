package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

// NewStore builds every repository on top of one pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:   NewUserRepository(pool),
		Recipes: NewRecipeRepository(pool),
		Catalog: NewCatalogRepository(pool),
		Marks:   NewMarkRepository(pool),
		Follows: NewFollowRepository(pool),
	}
}
