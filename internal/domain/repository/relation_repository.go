package repository

import (
	"context"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
)

// MarkKind selects a per-user recipe marker table.
type MarkKind string

const (
	Favorite     MarkKind = "favorite"
	ShoppingCart MarkKind = "shopping_cart"
)

// MarkRepository stores (user, recipe) markers: favorites and the shopping
// cart. Add returns ErrDuplicate when the pair already exists.
type MarkRepository interface {
	Add(ctx context.Context, kind MarkKind, userID, recipeID int64) error
	// Remove returns ErrNotFound when the pair does not exist.
	Remove(ctx context.Context, kind MarkKind, userID, recipeID int64) error
	Exists(ctx context.Context, kind MarkKind, userID, recipeID int64) (bool, error)
	// Marked reports which of recipeIDs carry the marker for userID.
	Marked(ctx context.Context, kind MarkKind, userID int64, recipeIDs []int64) (map[int64]bool, error)
	// ShoppingRows returns the cart's ingredient amounts summed per
	// (name, unit) pair, ordered by name then unit.
	ShoppingRows(ctx context.Context, userID int64) ([]entity.ShoppingItem, error)
}

// FollowRepository stores directed follower -> author subscriptions.
type FollowRepository interface {
	// Follow returns ErrDuplicate when the pair already exists.
	Follow(ctx context.Context, followerID, authorID int64) error
	// Unfollow returns ErrNotFound when the pair does not exist.
	Unfollow(ctx context.Context, followerID, authorID int64) error
	IsFollowing(ctx context.Context, followerID, authorID int64) (bool, error)
	Following(ctx context.Context, followerID int64, authorIDs []int64) (map[int64]bool, error)
	ListFollowing(ctx context.Context, followerID int64, limit, offset int) ([]entity.User, int, error)
	ListFollowers(ctx context.Context, authorID int64) ([]entity.User, error)
}

// Store bundles every repository of one storage backend.
type Store struct {
	Users   UserRepository
	Recipes RecipeRepository
	Catalog CatalogRepository
	Marks   MarkRepository
	Follows FollowRepository
}
