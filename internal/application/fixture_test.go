package application

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"testing"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
	"github.com/oksasatya/foodgram-api/internal/infrastructure/memory"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/mailer"
)

const pngURI = "data:image/png;base64,cG5nLWJ5dGVz"

type fixture struct {
	store repo.Store
	jobs  *fakePublisher

	breakfast, lunch    entity.Tag
	onion, salt, onion2 entity.Ingredient
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	helpers.PasswordCost = 4
	ctx := context.Background()
	f := &fixture{store: memory.New().Repositories(), jobs: &fakePublisher{}}

	f.breakfast = entity.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	f.lunch = entity.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	for _, tag := range []*entity.Tag{&f.breakfast, &f.lunch} {
		if err := f.store.Catalog.UpsertTag(ctx, tag); err != nil {
			t.Fatalf("seed tag: %v", err)
		}
	}
	f.onion = entity.Ingredient{Name: "onion", MeasurementUnit: "g"}
	f.salt = entity.Ingredient{Name: "salt", MeasurementUnit: "g"}
	f.onion2 = entity.Ingredient{Name: "onion", MeasurementUnit: "pcs"}
	for _, ing := range []*entity.Ingredient{&f.onion, &f.salt, &f.onion2} {
		if err := f.store.Catalog.UpsertIngredient(ctx, ing); err != nil {
			t.Fatalf("seed ingredient: %v", err)
		}
	}
	return f
}

func (f *fixture) user(t *testing.T, username string) *entity.User {
	t.Helper()
	u := &entity.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		Password:  "not-a-hash",
	}
	if err := f.store.Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) recipes() *RecipeService {
	s := NewRecipeService(f.store, nil)
	s.Jobs = f.jobs
	return s
}

func (f *fixture) recipe(t *testing.T, authorID int64, name string, ings ...IngredientAmount) *RecipeView {
	t.Helper()
	v, err := f.recipes().Create(context.Background(), authorID, RecipeInput{
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 10,
		Image:       pngURI,
		Ingredients: ings,
		Tags:        []int64{f.lunch.ID},
	})
	if err != nil {
		t.Fatalf("create recipe %q: %v", name, err)
	}
	return v
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func (p *fakePublisher) sent() []mailer.EmailJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]mailer.EmailJob(nil), p.jobs...)
}

type fakeImages struct {
	paths   []string
	removed []string
	body    []byte
}

func (f *fakeImages) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.paths = append(f.paths, objectPath)
	f.body = b
	return "https://img.test/" + objectPath, nil
}

func (f *fakeImages) Remove(_ context.Context, url string) error {
	f.removed = append(f.removed, url)
	return nil
}

type fakeIndex struct {
	indexed map[int64]string
	hits    []int64
}

func (f *fakeIndex) Index(_ context.Context, r *entity.Recipe) error {
	if f.indexed == nil {
		f.indexed = map[int64]string{}
	}
	f.indexed[r.ID] = r.Name
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id int64) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, limit, offset int) ([]int64, int, error) {
	return f.hits, len(f.hits), nil
}

func wantKind(t *testing.T, err, kind error, msg string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want kind %v", err, kind)
	}
	if msg != "" && err.Error() != msg {
		t.Fatalf("message = %q, want %q", err.Error(), msg)
	}
}

func recipeFilterAll() repo.RecipeFilter { return repo.RecipeFilter{} }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func toEntity(v *RecipeView) *entity.Recipe {
	return &entity.Recipe{ID: v.ID, AuthorID: v.Author.ID, Name: v.Name}
}
