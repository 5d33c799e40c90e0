package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type catalogRepo Store

func (r *catalogRepo) ListTags(_ context.Context) ([]entity.Tag, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]entity.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (r *catalogRepo) GetTag(_ context.Context, id int64) (*entity.Tag, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *catalogRepo) TagsByIDs(_ context.Context, ids []int64) ([]entity.Tag, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]entity.Tag, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if t, ok := s.tags[id]; ok && !seen[id] {
			seen[id] = true
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (r *catalogRepo) ListIngredients(_ context.Context, prefix string) ([]entity.Ingredient, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefix = strings.ToLower(prefix)
	out := make([]entity.Ingredient, 0)
	for _, i := range s.ingredients {
		if strings.HasPrefix(strings.ToLower(i.Name), prefix) {
			out = append(out, i)
		}
	}
	sortIngredients(out)
	return out, nil
}

func (r *catalogRepo) GetIngredient(_ context.Context, id int64) (*entity.Ingredient, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.ingredients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &i, nil
}

func (r *catalogRepo) IngredientsByIDs(_ context.Context, ids []int64) ([]entity.Ingredient, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Ingredient, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if i, ok := s.ingredients[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, i)
		}
	}
	sortIngredients(out)
	return out, nil
}

func (r *catalogRepo) UpsertTag(_ context.Context, t *entity.Tag) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.tags {
		if existing.Slug == t.Slug {
			t.ID = id
			s.tags[id] = *t
			return nil
		}
		if existing.Name == t.Name || existing.Color == t.Color {
			return fmt.Errorf("%w: tags", repository.ErrDuplicate)
		}
	}
	t.ID = s.nextID()
	s.tags[t.ID] = *t
	return nil
}

func (r *catalogRepo) UpsertIngredient(_ context.Context, i *entity.Ingredient) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.ingredients {
		if existing.Name == i.Name && existing.MeasurementUnit == i.MeasurementUnit {
			i.ID = id
			return nil
		}
	}
	i.ID = s.nextID()
	s.ingredients[i.ID] = *i
	return nil
}

func sortIngredients(items []entity.Ingredient) {
	sort.Slice(items, func(a, b int) bool {
		if items[a].Name != items[b].Name {
			return items[a].Name < items[b].Name
		}
		return items[a].MeasurementUnit < items[b].MeasurementUnit
	})
}

var _ repository.CatalogRepository = (*catalogRepo)(nil)
