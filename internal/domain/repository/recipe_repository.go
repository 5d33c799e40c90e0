package repository

import (
	"context"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

// RecipeFilter narrows a recipe listing. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    int64
	TagSlugs    []string
	FavoritedBy int64
	InCartOf    int64
	Limit       int
	Offset      int
}

// RecipeRepository stores recipes with their ingredient and tag sets.
type RecipeRepository interface {
	// Create inserts the recipe with its ingredient rows and tags.
	Create(ctx context.Context, r *entity.Recipe) error
	// Update overwrites scalar fields and replaces the ingredient and tag
	// sets wholesale in one atomic step.
	Update(ctx context.Context, r *entity.Recipe) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*entity.Recipe, error)
	List(ctx context.Context, f RecipeFilter) ([]entity.Recipe, int, error)
	// ListByAuthor returns the newest recipes of an author without their
	// ingredient and tag sets. limit <= 0 means no limit.
	ListByAuthor(ctx context.Context, authorID int64, limit int) ([]entity.Recipe, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	IDsByAuthor(ctx context.Context, authorID int64) ([]int64, error)
}
