package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
)

// RelationService manages favorites, the shopping cart and subscriptions.
// Each add checks for an existing pair first; the unique constraint in the
// store catches whoever loses a concurrent race, and both paths produce the
// same conflict.
type RelationService struct {
	Store  repo.Store
	Logger *logrus.Logger
}

func NewRelationService(store repo.Store, logger *logrus.Logger) *RelationService {
	return &RelationService{Store: store, Logger: logger}
}

type markMessages struct {
	exists  string
	missing string
}

var markText = map[repo.MarkKind]markMessages{
	repo.Favorite:     {exists: "recipe is already in favorites", missing: "recipe was not in favorites"},
	repo.ShoppingCart: {exists: "recipe is already in the shopping cart", missing: "recipe was not in the shopping cart"},
}

func (s *RelationService) AddFavorite(ctx context.Context, userID, recipeID int64) (*RecipeShort, error) {
	return s.addMark(ctx, repo.Favorite, userID, recipeID)
}

func (s *RelationService) RemoveFavorite(ctx context.Context, userID, recipeID int64) error {
	return s.removeMark(ctx, repo.Favorite, userID, recipeID)
}

func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID int64) (*RecipeShort, error) {
	return s.addMark(ctx, repo.ShoppingCart, userID, recipeID)
}

func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID int64) error {
	return s.removeMark(ctx, repo.ShoppingCart, userID, recipeID)
}

func (s *RelationService) addMark(ctx context.Context, kind repo.MarkKind, userID, recipeID int64) (*RecipeShort, error) {
	rec, err := s.Store.Recipes.GetByID(ctx, recipeID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("recipe not found")
	}
	if err != nil {
		return nil, err
	}
	exists, err := s.Store.Marks.Exists(ctx, kind, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if exists {
		metricConflicts.Add(1)
		return nil, conflict(markText[kind].exists)
	}
	if err := s.Store.Marks.Add(ctx, kind, userID, recipeID); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			metricConflicts.Add(1)
			return nil, conflict(markText[kind].exists)
		case errors.Is(err, repo.ErrNotFound):
			return nil, notFound("recipe not found")
		}
		return nil, err
	}
	metricMarksAdded.Add(string(kind), 1)
	short := toRecipeShort(rec)
	return &short, nil
}

func (s *RelationService) removeMark(ctx context.Context, kind repo.MarkKind, userID, recipeID int64) error {
	if _, err := s.Store.Recipes.GetByID(ctx, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("recipe not found")
		}
		return err
	}
	if err := s.Store.Marks.Remove(ctx, kind, userID, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return badRequest(markText[kind].missing)
		}
		return err
	}
	return nil
}

// Subscribe makes userID follow authorID and returns the author with a
// preview of their recipes.
func (s *RelationService) Subscribe(ctx context.Context, userID, authorID int64, recipesLimit int) (*SubscriptionView, error) {
	if userID == authorID {
		return nil, conflict("cannot subscribe to yourself")
	}
	author, err := s.Store.Users.GetByID(ctx, authorID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, notFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	following, err := s.Store.Follows.IsFollowing(ctx, userID, authorID)
	if err != nil {
		return nil, err
	}
	if following {
		metricConflicts.Add(1)
		return nil, conflict("already subscribed to this user")
	}
	if err := s.Store.Follows.Follow(ctx, userID, authorID); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			metricConflicts.Add(1)
			return nil, conflict("already subscribed to this user")
		case errors.Is(err, repo.ErrNotFound):
			return nil, notFound("user not found")
		}
		return nil, err
	}
	view, err := s.subscriptionView(ctx, toUserView(author, true), recipesLimit)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *RelationService) Unsubscribe(ctx context.Context, userID, authorID int64) error {
	if _, err := s.Store.Users.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("user not found")
		}
		return err
	}
	if err := s.Store.Follows.Unfollow(ctx, userID, authorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return badRequest("you were not subscribed to this user")
		}
		return err
	}
	return nil
}

// Subscriptions pages through the authors userID follows. recipesLimit <= 0
// includes every recipe.
func (s *RelationService) Subscriptions(ctx context.Context, userID int64, limit, offset, recipesLimit int) ([]SubscriptionView, int, error) {
	authors, total, err := s.Store.Follows.ListFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	out := make([]SubscriptionView, 0, len(authors))
	for i := range authors {
		v, err := s.subscriptionView(ctx, toUserView(&authors[i], true), recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, nil
}

func (s *RelationService) subscriptionView(ctx context.Context, author UserView, recipesLimit int) (SubscriptionView, error) {
	recipes, err := s.Store.Recipes.ListByAuthor(ctx, author.ID, recipesLimit)
	if err != nil {
		return SubscriptionView{}, err
	}
	count, err := s.Store.Recipes.CountByAuthor(ctx, author.ID)
	if err != nil {
		return SubscriptionView{}, err
	}
	short := make([]RecipeShort, 0, len(recipes))
	for i := range recipes {
		short = append(short, toRecipeShort(&recipes[i]))
	}
	return SubscriptionView{UserView: author, Recipes: short, RecipesCount: count}, nil
}
