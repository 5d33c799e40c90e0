package repository

import (
	"context"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

// CatalogRepository serves the read-mostly tag and ingredient dictionaries.
type CatalogRepository interface {
	ListTags(ctx context.Context) ([]entity.Tag, error)
	GetTag(ctx context.Context, id int64) (*entity.Tag, error)
	TagsByIDs(ctx context.Context, ids []int64) ([]entity.Tag, error)

	// ListIngredients returns ingredients whose name starts with prefix,
	// case-insensitively. An empty prefix lists everything.
	ListIngredients(ctx context.Context, prefix string) ([]entity.Ingredient, error)
	GetIngredient(ctx context.Context, id int64) (*entity.Ingredient, error)
	IngredientsByIDs(ctx context.Context, ids []int64) ([]entity.Ingredient, error)

	// UpsertTag and UpsertIngredient are used by the seeder; they fill in ID.
	UpsertTag(ctx context.Context, t *entity.Tag) error
	UpsertIngredient(ctx context.Context, i *entity.Ingredient) error
}
