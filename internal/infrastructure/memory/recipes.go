package memory

import (
	"context"
	"fmt"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type recipeRepo Store

// checkSetsLocked applies the foreign key and unique rules of
// recipe_ingredients and recipe_tags.
func (s *Store) checkSetsLocked(rec *entity.Recipe) error {
	if _, ok := s.users[rec.AuthorID]; !ok {
		return fmt.Errorf("%w: recipes_author_id_fkey", repository.ErrNotFound)
	}
	seen := make(map[int64]bool, len(rec.Ingredients))
	for _, ri := range rec.Ingredients {
		if _, ok := s.ingredients[ri.IngredientID]; !ok {
			return fmt.Errorf("%w: recipe_ingredients_ingredient_id_fkey", repository.ErrNotFound)
		}
		if seen[ri.IngredientID] {
			return fmt.Errorf("%w: recipe_ingredients_recipe_ingredient_key", repository.ErrDuplicate)
		}
		seen[ri.IngredientID] = true
	}
	seenTags := make(map[int64]bool, len(rec.Tags))
	for _, t := range rec.Tags {
		if _, ok := s.tags[t.ID]; !ok {
			return fmt.Errorf("%w: recipe_tags_tag_id_fkey", repository.ErrNotFound)
		}
		if seenTags[t.ID] {
			return fmt.Errorf("%w: recipe_tags_pkey", repository.ErrDuplicate)
		}
		seenTags[t.ID] = true
	}
	return nil
}

func toStored(rec *entity.Recipe) *storedRecipe {
	sr := &storedRecipe{recipe: *rec}
	sr.recipe.Tags = nil
	sr.recipe.Ingredients = nil
	for _, ri := range rec.Ingredients {
		sr.ingredients = append(sr.ingredients, ingredientRow{ingredientID: ri.IngredientID, amount: ri.Amount})
	}
	sr.tagIDs = rec.TagIDs()
	return sr
}

func (r *recipeRepo) Create(_ context.Context, rec *entity.Recipe) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkSetsLocked(rec); err != nil {
		return err
	}
	rec.ID = s.nextID()
	rec.CreatedAt = s.now()
	s.recipes[rec.ID] = toStored(rec)
	return nil
}

// Update validates the whole replacement before touching the stored recipe,
// so a rejected update leaves the previous sets intact.
func (r *recipeRepo) Update(_ context.Context, rec *entity.Recipe) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.recipes[rec.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := s.checkSetsLocked(rec); err != nil {
		return err
	}
	sr := toStored(rec)
	sr.recipe.CreatedAt = old.recipe.CreatedAt
	sr.recipe.AuthorID = old.recipe.AuthorID
	s.recipes[rec.ID] = sr
	return nil
}

func (r *recipeRepo) Delete(_ context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recipes[id]; !ok {
		return repository.ErrNotFound
	}
	s.deleteRecipeLocked(id)
	return nil
}

func (r *recipeRepo) GetByID(_ context.Context, id int64) (*entity.Recipe, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.recipes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec := s.hydrate(sr, true)
	return &rec, nil
}

func (r *recipeRepo) List(_ context.Context, f repository.RecipeFilter) ([]entity.Recipe, int, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	slugs := make(map[string]bool, len(f.TagSlugs))
	for _, slug := range f.TagSlugs {
		slugs[slug] = true
	}
	matched := s.sortedRecipes(func(sr *storedRecipe) bool {
		if f.AuthorID != 0 && sr.recipe.AuthorID != f.AuthorID {
			return false
		}
		if len(slugs) > 0 {
			hit := false
			for _, id := range sr.tagIDs {
				if slugs[s.tags[id].Slug] {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
		if f.FavoritedBy != 0 {
			if _, ok := s.marks[repository.Favorite][pair{f.FavoritedBy, sr.recipe.ID}]; !ok {
				return false
			}
		}
		if f.InCartOf != 0 {
			if _, ok := s.marks[repository.ShoppingCart][pair{f.InCartOf, sr.recipe.ID}]; !ok {
				return false
			}
		}
		return true
	})
	out := make([]entity.Recipe, 0, len(matched))
	for _, sr := range page(matched, f.Limit, f.Offset) {
		out = append(out, s.hydrate(sr, true))
	}
	return out, len(matched), nil
}

func (r *recipeRepo) ListByAuthor(_ context.Context, authorID int64, limit int) ([]entity.Recipe, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.sortedRecipes(func(sr *storedRecipe) bool { return sr.recipe.AuthorID == authorID })
	out := make([]entity.Recipe, 0, len(matched))
	for _, sr := range page(matched, limit, 0) {
		out = append(out, s.hydrate(sr, false))
	}
	return out, nil
}

func (r *recipeRepo) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	ids, err := r.IDsByAuthor(ctx, authorID)
	return len(ids), err
}

func (r *recipeRepo) IDsByAuthor(_ context.Context, authorID int64) ([]int64, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0)
	for id, sr := range s.recipes {
		if sr.recipe.AuthorID == authorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var _ repository.RecipeRepository = (*recipeRepo)(nil)
