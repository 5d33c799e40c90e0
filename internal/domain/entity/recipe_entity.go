package entity

import "time"

const (
	MinAmount      = 1
	MaxAmount      = 10000
	MinCookingTime = 1
	MaxCookingTime = 1000
	MaxNameLength  = 200
)

// Recipe is owned by exactly one author. Each ingredient appears at most
// once in Ingredients.
type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Text        string
	CookingTime int
	Image       string
	CreatedAt   time.Time

	Tags        []Tag
	Ingredients []RecipeIngredient
}

// RecipeIngredient is a recipe-ingredient-amount row joined with the
// ingredient it points at.
type RecipeIngredient struct {
	IngredientID    int64
	Name            string
	MeasurementUnit string
	Amount          int
}

// IngredientIDs returns ingredient ids in row order.
func (r *Recipe) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(r.Ingredients))
	for _, ri := range r.Ingredients {
		ids = append(ids, ri.IngredientID)
	}
	return ids
}

// TagIDs returns tag ids in association order.
func (r *Recipe) TagIDs() []int64 {
	ids := make([]int64, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// HasIngredient reports whether id is already among the recipe's rows.
func (r *Recipe) HasIngredient(id int64) bool {
	for _, ri := range r.Ingredients {
		if ri.IngredientID == id {
			return true
		}
	}
	return false
}
