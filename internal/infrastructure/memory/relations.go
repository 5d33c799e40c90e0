package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type markRepo Store

func (r *markRepo) table(kind repository.MarkKind) (map[pair]time.Time, error) {
	m, ok := r.marks[kind]
	if !ok {
		return nil, fmt.Errorf("unknown mark kind %q", kind)
	}
	return m, nil
}

func (r *markRepo) Add(_ context.Context, kind repository.MarkKind, userID, recipeID int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := r.table(kind)
	if err != nil {
		return err
	}
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("%w: user", repository.ErrNotFound)
	}
	if _, ok := s.recipes[recipeID]; !ok {
		return fmt.Errorf("%w: recipe", repository.ErrNotFound)
	}
	k := pair{userID, recipeID}
	if _, ok := m[k]; ok {
		return fmt.Errorf("%w: %s", repository.ErrDuplicate, kind)
	}
	m[k] = s.now()
	return nil
}

func (r *markRepo) Remove(_ context.Context, kind repository.MarkKind, userID, recipeID int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := r.table(kind)
	if err != nil {
		return err
	}
	k := pair{userID, recipeID}
	if _, ok := m[k]; !ok {
		return repository.ErrNotFound
	}
	delete(m, k)
	return nil
}

func (r *markRepo) Exists(_ context.Context, kind repository.MarkKind, userID, recipeID int64) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, err := r.table(kind)
	if err != nil {
		return false, err
	}
	_, ok := m[pair{userID, recipeID}]
	return ok, nil
}

func (r *markRepo) Marked(_ context.Context, kind repository.MarkKind, userID int64, recipeIDs []int64) (map[int64]bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]bool, len(recipeIDs))
	for _, id := range recipeIDs {
		if _, ok := m[pair{userID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *markRepo) ShoppingRows(_ context.Context, userID int64) ([]entity.ShoppingItem, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	type key struct{ name, unit string }
	sums := make(map[key]int)
	for k := range s.marks[repository.ShoppingCart] {
		if k.a != userID {
			continue
		}
		sr, ok := s.recipes[k.b]
		if !ok {
			continue
		}
		for _, row := range sr.ingredients {
			ing := s.ingredients[row.ingredientID]
			sums[key{ing.Name, ing.MeasurementUnit}] += row.amount
		}
	}
	items := make([]entity.ShoppingItem, 0, len(sums))
	for k, amount := range sums {
		items = append(items, entity.ShoppingItem{Name: k.name, MeasurementUnit: k.unit, Amount: amount})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].MeasurementUnit < items[j].MeasurementUnit
	})
	return items, nil
}

type followRepo Store

func (r *followRepo) Follow(_ context.Context, followerID, authorID int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if followerID == authorID {
		return fmt.Errorf("follows_no_self_follow: user %d", followerID)
	}
	if _, ok := s.users[followerID]; !ok {
		return fmt.Errorf("%w: follower", repository.ErrNotFound)
	}
	if _, ok := s.users[authorID]; !ok {
		return fmt.Errorf("%w: author", repository.ErrNotFound)
	}
	k := pair{followerID, authorID}
	if _, ok := s.follows[k]; ok {
		return fmt.Errorf("%w: follows_user_author_key", repository.ErrDuplicate)
	}
	s.follows[k] = s.now()
	return nil
}

func (r *followRepo) Unfollow(_ context.Context, followerID, authorID int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{followerID, authorID}
	if _, ok := s.follows[k]; !ok {
		return repository.ErrNotFound
	}
	delete(s.follows, k)
	return nil
}

func (r *followRepo) IsFollowing(_ context.Context, followerID, authorID int64) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.follows[pair{followerID, authorID}]
	return ok, nil
}

func (r *followRepo) Following(_ context.Context, followerID int64, authorIDs []int64) (map[int64]bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		if _, ok := s.follows[pair{followerID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (r *followRepo) ListFollowing(_ context.Context, followerID int64, limit, offset int) ([]entity.User, int, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]entity.User, 0)
	for k := range s.follows {
		if k.a == followerID {
			if u, ok := s.users[k.b]; ok {
				users = append(users, u)
			}
		}
	}
	sortUsers(users)
	return page(users, limit, offset), len(users), nil
}

func (r *followRepo) ListFollowers(_ context.Context, authorID int64) ([]entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]entity.User, 0)
	for k := range s.follows {
		if k.b == authorID {
			if u, ok := s.users[k.a]; ok {
				users = append(users, u)
			}
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

var (
	_ repository.MarkRepository   = (*markRepo)(nil)
	_ repository.FollowRepository = (*followRepo)(nil)
)
