// Package memory keeps every repository in process memory. It backs
// STORE_DRIVER=memory for local runs and the service and handler tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type pair struct {
	a, b int64
}

type ingredientRow struct {
	ingredientID int64
	amount       int
}

type storedRecipe struct {
	recipe      entity.Recipe // scalar fields only
	ingredients []ingredientRow
	tagIDs      []int64
}

// Store is safe for concurrent use. Uniqueness is enforced on every write
// the same way the SQL schema does it.
type Store struct {
	mu sync.RWMutex

	seq int64

	users       map[int64]entity.User
	recipes     map[int64]*storedRecipe
	tags        map[int64]entity.Tag
	ingredients map[int64]entity.Ingredient
	marks       map[repository.MarkKind]map[pair]time.Time
	follows     map[pair]time.Time

	now func() time.Time
}

func New() *Store {
	return &Store{
		users:       make(map[int64]entity.User),
		recipes:     make(map[int64]*storedRecipe),
		tags:        make(map[int64]entity.Tag),
		ingredients: make(map[int64]entity.Ingredient),
		marks: map[repository.MarkKind]map[pair]time.Time{
			repository.Favorite:     {},
			repository.ShoppingCart: {},
		},
		follows: make(map[pair]time.Time),
		now:     time.Now,
	}
}

// Repositories exposes the store through the repository contracts.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Users:   (*userRepo)(s),
		Recipes: (*recipeRepo)(s),
		Catalog: (*catalogRepo)(s),
		Marks:   (*markRepo)(s),
		Follows: (*followRepo)(s),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// hydrate joins the stored rows with the catalog. Caller holds the lock.
func (s *Store) hydrate(sr *storedRecipe, withSets bool) entity.Recipe {
	rec := sr.recipe
	if !withSets {
		return rec
	}
	rec.Tags = make([]entity.Tag, 0, len(sr.tagIDs))
	for _, id := range sr.tagIDs {
		if t, ok := s.tags[id]; ok {
			rec.Tags = append(rec.Tags, t)
		}
	}
	sort.Slice(rec.Tags, func(i, j int) bool { return rec.Tags[i].Name < rec.Tags[j].Name })
	rec.Ingredients = make([]entity.RecipeIngredient, 0, len(sr.ingredients))
	for _, row := range sr.ingredients {
		ing, ok := s.ingredients[row.ingredientID]
		if !ok {
			continue
		}
		rec.Ingredients = append(rec.Ingredients, entity.RecipeIngredient{
			IngredientID:    ing.ID,
			Name:            ing.Name,
			MeasurementUnit: ing.MeasurementUnit,
			Amount:          row.amount,
		})
	}
	return rec
}

// sortedRecipes returns recipes newest first. Caller holds the lock.
func (s *Store) sortedRecipes(keep func(*storedRecipe) bool) []*storedRecipe {
	out := make([]*storedRecipe, 0, len(s.recipes))
	for _, sr := range s.recipes {
		if keep(sr) {
			out = append(out, sr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].recipe, out[j].recipe
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// deleteRecipeLocked removes a recipe and every marker pointing at it.
func (s *Store) deleteRecipeLocked(id int64) {
	delete(s.recipes, id)
	for _, m := range s.marks {
		for k := range m {
			if k.b == id {
				delete(m, k)
			}
		}
	}
}
