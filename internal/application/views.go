package application

import (
	"context"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type UserView struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

type TagView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

type IngredientView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredientView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeView struct {
	ID               int64                  `json:"id"`
	Tags             []TagView              `json:"tags"`
	Author           UserView               `json:"author"`
	Ingredients      []RecipeIngredientView `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// RecipeShort is the compact form used in subscriptions and mark responses.
type RecipeShort struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type SubscriptionView struct {
	UserView
	Recipes      []RecipeShort `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}

type ShoppingItemView struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

func toUserView(u *entity.User, subscribed bool) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func toTagView(t entity.Tag) TagView {
	return TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toTagViews(tags []entity.Tag) []TagView {
	out := make([]TagView, 0, len(tags))
	for _, t := range tags {
		out = append(out, toTagView(t))
	}
	return out
}

func toIngredientView(i entity.Ingredient) IngredientView {
	return IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toIngredientViews(items []entity.Ingredient) []IngredientView {
	out := make([]IngredientView, 0, len(items))
	for _, i := range items {
		out = append(out, toIngredientView(i))
	}
	return out
}

func toRecipeShort(r *entity.Recipe) RecipeShort {
	return RecipeShort{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

// userViews decorates users with is_subscribed for viewerID (0 = anonymous).
func userViews(ctx context.Context, follows repo.FollowRepository, viewerID int64, users []entity.User) ([]UserView, error) {
	subscribed := map[int64]bool{}
	if viewerID != 0 && len(users) > 0 {
		ids := make([]int64, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		var err error
		if subscribed, err = follows.Following(ctx, viewerID, ids); err != nil {
			return nil, err
		}
	}
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, toUserView(&users[i], subscribed[users[i].ID]))
	}
	return out, nil
}

// recipeViews joins recipes with their authors and the viewer's marks.
func recipeViews(ctx context.Context, store repo.Store, viewerID int64, recipes []entity.Recipe) ([]RecipeView, error) {
	out := make([]RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(recipes))
	authorIDs := make([]int64, 0, len(recipes))
	authors := map[int64]*entity.User{}
	for _, r := range recipes {
		ids = append(ids, r.ID)
		if _, ok := authors[r.AuthorID]; !ok {
			authors[r.AuthorID] = nil
			authorIDs = append(authorIDs, r.AuthorID)
		}
	}
	for _, id := range authorIDs {
		u, err := store.Users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		authors[id] = u
	}

	favorited, inCart, subscribed := map[int64]bool{}, map[int64]bool{}, map[int64]bool{}
	if viewerID != 0 {
		var err error
		if favorited, err = store.Marks.Marked(ctx, repo.Favorite, viewerID, ids); err != nil {
			return nil, err
		}
		if inCart, err = store.Marks.Marked(ctx, repo.ShoppingCart, viewerID, ids); err != nil {
			return nil, err
		}
		if subscribed, err = store.Follows.Following(ctx, viewerID, authorIDs); err != nil {
			return nil, err
		}
	}

	for i := range recipes {
		r := &recipes[i]
		ings := make([]RecipeIngredientView, 0, len(r.Ingredients))
		for _, ri := range r.Ingredients {
			ings = append(ings, RecipeIngredientView{
				ID:              ri.IngredientID,
				Name:            ri.Name,
				MeasurementUnit: ri.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		out = append(out, RecipeView{
			ID:               r.ID,
			Tags:             toTagViews(r.Tags),
			Author:           toUserView(authors[r.AuthorID], subscribed[r.AuthorID]),
			Ingredients:      ings,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
		})
	}
	return out, nil
}
