package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

type userRepo Store

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		if existing.Username == u.Username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
	}
	u.ID = s.nextID()
	u.CreatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepo) ExistsUsername(_ context.Context, username string) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]entity.User, int, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sortUsers(users)
	return page(users, limit, offset), len(users), nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Password = hash
	s.users[id] = u
	return nil
}

// Delete mirrors the ON DELETE CASCADE rules of the SQL schema.
func (r *userRepo) Delete(_ context.Context, id int64) error {
	s := (*Store)(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	for rid, sr := range s.recipes {
		if sr.recipe.AuthorID == id {
			s.deleteRecipeLocked(rid)
		}
	}
	for _, m := range s.marks {
		for k := range m {
			if k.a == id {
				delete(m, k)
			}
		}
	}
	for k := range s.follows {
		if k.a == id || k.b == id {
			delete(s.follows, k)
		}
	}
	return nil
}

func sortUsers(users []entity.User) {
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
}

var _ repository.UserRepository = (*userRepo)(nil)
