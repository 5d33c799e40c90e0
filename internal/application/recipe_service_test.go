package application

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	repo "github.com/oksasatya/foodgram-api/internal/domain/repository"
)

func TestCreateRecipeValidation(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "author")
	valid := func() RecipeInput {
		return RecipeInput{
			Name:        "Omelette",
			Text:        "Whisk and fry.",
			CookingTime: 5,
			Image:       pngURI,
			Ingredients: []IngredientAmount{{ID: f.onion.ID, Amount: 10}},
			Tags:        []int64{f.breakfast.ID},
		}
	}
	tests := []struct {
		name   string
		mutate func(*RecipeInput)
		field  string
	}{
		{"no ingredients", func(in *RecipeInput) { in.Ingredients = nil }, "ingredients"},
		{"duplicate ingredient", func(in *RecipeInput) {
			in.Ingredients = append(in.Ingredients, IngredientAmount{ID: f.onion.ID, Amount: 3})
		}, "ingredients"},
		{"unknown ingredient", func(in *RecipeInput) { in.Ingredients[0].ID = 4242 }, "ingredients"},
		{"amount too small", func(in *RecipeInput) { in.Ingredients[0].Amount = 0 }, "ingredients[0].amount"},
		{"amount too large", func(in *RecipeInput) { in.Ingredients[0].Amount = 10001 }, "ingredients[0].amount"},
		{"no tags", func(in *RecipeInput) { in.Tags = nil }, "tags"},
		{"duplicate tag", func(in *RecipeInput) { in.Tags = []int64{f.breakfast.ID, f.breakfast.ID} }, "tags"},
		{"unknown tag", func(in *RecipeInput) { in.Tags = []int64{777} }, "tags"},
		{"cooking time zero", func(in *RecipeInput) { in.CookingTime = 0 }, "cooking_time"},
		{"cooking time too long", func(in *RecipeInput) { in.CookingTime = 1001 }, "cooking_time"},
		{"blank name", func(in *RecipeInput) { in.Name = "  " }, "name"},
		{"long name", func(in *RecipeInput) { in.Name = strings.Repeat("a", 201) }, "name"},
		{"missing image", func(in *RecipeInput) { in.Image = "" }, "image"},
		{"not an image", func(in *RecipeInput) { in.Image = "data:text/plain;base64,aGk=" }, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			_, err := f.recipes().Create(context.Background(), author.ID, in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Fatalf("fields = %v, want key %q", verr.Fields, tt.field)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatal("validation error should unwrap to ErrInvalid")
			}
		})
	}

	_, total, err := f.store.Recipes.List(context.Background(), recipeFilterAll())
	if err != nil || total != 0 {
		t.Fatalf("rejected input stored recipes: total=%d err=%v", total, err)
	}
}

func TestCreateRecipeStoresImageAndIndexes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author")
	follower := f.user(t, "fan")
	if _, err := NewRelationService(f.store, nil).Subscribe(ctx, follower.ID, author.ID, 0); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	images, index := &fakeImages{}, &fakeIndex{}
	svc := f.recipes()
	svc.Images, svc.Index = images, index
	svc.SiteURL = "https://food.test"

	v, err := svc.Create(ctx, author.ID, RecipeInput{
		Name:        "Onion soup",
		Text:        "Slowly.",
		CookingTime: 60,
		Image:       pngURI,
		Ingredients: []IngredientAmount{{ID: f.onion.ID, Amount: 500}, {ID: f.salt.ID, Amount: 5}},
		Tags:        []int64{f.lunch.ID, f.breakfast.ID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(images.paths) != 1 || !strings.HasPrefix(images.paths[0], "recipes/"+itoa(author.ID)+"/") || !strings.HasSuffix(images.paths[0], ".png") {
		t.Fatalf("uploaded paths = %v", images.paths)
	}
	if string(images.body) != "png-bytes" {
		t.Fatalf("uploaded body = %q", images.body)
	}
	if v.Image != "https://img.test/"+images.paths[0] {
		t.Fatalf("image = %q", v.Image)
	}
	if index.indexed[v.ID] != "Onion soup" {
		t.Fatalf("indexed = %v", index.indexed)
	}
	if v.Author.ID != author.ID || len(v.Ingredients) != 2 || len(v.Tags) != 2 || v.Tags[0].Slug != "breakfast" {
		t.Fatalf("view = %+v", v)
	}

	jobs := f.jobs.sent()
	if len(jobs) != 1 || jobs[0].To != follower.Email || jobs[0].Template != "new_recipe" {
		t.Fatalf("jobs = %+v", jobs)
	}
	if jobs[0].Data["RecipeURL"] != "https://food.test/recipes/"+itoa(v.ID) {
		t.Fatalf("recipe url = %v", jobs[0].Data["RecipeURL"])
	}

	if err := svc.Delete(ctx, author.ID, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := index.indexed[v.ID]; ok {
		t.Fatal("deleted recipe still indexed")
	}
	if len(images.removed) != 1 || images.removed[0] != v.Image {
		t.Fatalf("removed images = %v", images.removed)
	}
}

func TestUpdateRecipeReplacesSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author")
	orig := f.recipe(t, author.ID, "Stew", IngredientAmount{ID: f.onion.ID, Amount: 100}, IngredientAmount{ID: f.salt.ID, Amount: 2})
	svc := f.recipes()

	_, err := svc.Update(ctx, author.ID, orig.ID, RecipeInput{
		Name: "Stew", Text: "Cook it.", CookingTime: 10,
		Ingredients: []IngredientAmount{},
		Tags:        []int64{f.lunch.ID},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Fields["ingredients"] == "" {
		t.Fatalf("empty ingredients err = %v", err)
	}
	kept, err := svc.Get(ctx, author.ID, orig.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(kept.Ingredients, orig.Ingredients) {
		t.Fatalf("ingredients changed after rejected update: %+v", kept.Ingredients)
	}

	updated, err := svc.Update(ctx, author.ID, orig.ID, RecipeInput{
		Name: "Better stew", Text: "Cook it longer.", CookingTime: 90,
		Ingredients: []IngredientAmount{{ID: f.onion2.ID, Amount: 3}},
		Tags:        []int64{f.breakfast.ID},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	want := []RecipeIngredientView{{ID: f.onion2.ID, Name: "onion", MeasurementUnit: "pcs", Amount: 3}}
	if !reflect.DeepEqual(updated.Ingredients, want) {
		t.Fatalf("ingredients = %+v, want %+v", updated.Ingredients, want)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].ID != f.breakfast.ID {
		t.Fatalf("tags = %+v", updated.Tags)
	}
	if updated.Image != orig.Image {
		t.Fatal("image should be kept when omitted on update")
	}
	if updated.Name != "Better stew" || updated.CookingTime != 90 {
		t.Fatalf("scalars not updated: %+v", updated)
	}
}

func TestOnlyAuthorChangesRecipe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author")
	other := f.user(t, "other")
	r := f.recipe(t, author.ID, "Pie", IngredientAmount{ID: f.salt.ID, Amount: 1})
	svc := f.recipes()

	in := RecipeInput{Name: "Mine", Text: "x", CookingTime: 1, Ingredients: []IngredientAmount{{ID: f.salt.ID, Amount: 1}}, Tags: []int64{f.lunch.ID}}
	_, err := svc.Update(ctx, other.ID, r.ID, in)
	wantKind(t, err, ErrForbidden, "")
	wantKind(t, svc.Delete(ctx, other.ID, r.ID), ErrForbidden, "")
	wantKind(t, svc.Delete(ctx, author.ID, 555), ErrNotFound, "recipe not found")
}

func TestListRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")
	a := f.recipe(t, ann.ID, "A", IngredientAmount{ID: f.salt.ID, Amount: 1})
	b := f.recipe(t, bob.ID, "B", IngredientAmount{ID: f.salt.ID, Amount: 1})
	if _, err := NewRelationService(f.store, nil).AddFavorite(ctx, ann.ID, b.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	svc := f.recipes()

	all, total, err := svc.List(ctx, ann.ID, ListQuery{Limit: 10})
	if err != nil || total != 2 || all[0].ID != b.ID || !all[0].IsFavorited || all[1].IsFavorited {
		t.Fatalf("List = %+v, %d, %v", all, total, err)
	}

	mine, total, _ := svc.List(ctx, 0, ListQuery{AuthorID: ann.ID, Limit: 10})
	if total != 1 || mine[0].ID != a.ID {
		t.Fatalf("author filter = %+v", mine)
	}

	favs, total, _ := svc.List(ctx, ann.ID, ListQuery{Favorited: true, Limit: 10})
	if total != 1 || favs[0].ID != b.ID {
		t.Fatalf("favorited filter = %+v", favs)
	}

	anon, total, _ := svc.List(ctx, 0, ListQuery{Favorited: true, Limit: 10})
	if total != 0 || len(anon) != 0 {
		t.Fatalf("anonymous favorited = %+v", anon)
	}

	none, total, _ := svc.List(ctx, 0, ListQuery{Tags: []string{"breakfast"}, Limit: 10})
	if total != 0 || len(none) != 0 {
		t.Fatalf("tag filter = %+v", none)
	}
}

func TestSearchRecipes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	r := f.recipe(t, u.ID, "Borscht", IngredientAmount{ID: f.onion.ID, Amount: 1})
	svc := f.recipes()

	_, _, err := svc.Search(ctx, 0, "borscht", 10, 0)
	wantKind(t, err, ErrUnavailable, "")

	svc.Index = &fakeIndex{hits: []int64{r.ID, 999}}
	got, _, err := svc.Search(ctx, 0, "borscht", 10, 0)
	if err != nil || len(got) != 1 || got[0].ID != r.ID {
		t.Fatalf("Search = %+v, %v", got, err)
	}
}

type failingRecipes struct {
	repo.RecipeRepository
	err error
}

func (r failingRecipes) Create(context.Context, *entity.Recipe) error { return r.err }
func (r failingRecipes) Update(context.Context, *entity.Recipe) error { return r.err }

func TestFailedStoreWriteRemovesUploadedImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	author := f.user(t, "author")
	orig := f.recipe(t, author.ID, "Soup", IngredientAmount{ID: f.onion.ID, Amount: 1})

	broken := f.store
	broken.Recipes = failingRecipes{RecipeRepository: f.store.Recipes, err: errors.New("db down")}
	images := &fakeImages{}
	svc := NewRecipeService(broken, nil)
	svc.Images = images

	in := RecipeInput{
		Name:        "Stew",
		Text:        "Simmer.",
		CookingTime: 30,
		Image:       pngURI,
		Ingredients: []IngredientAmount{{ID: f.salt.ID, Amount: 2}},
		Tags:        []int64{f.lunch.ID},
	}
	if _, err := svc.Create(ctx, author.ID, in); err == nil {
		t.Fatal("Create succeeded on a failing store")
	}
	if _, err := svc.Update(ctx, author.ID, orig.ID, in); err == nil {
		t.Fatal("Update succeeded on a failing store")
	}

	if len(images.paths) != 2 {
		t.Fatalf("uploaded paths = %v", images.paths)
	}
	want := []string{"https://img.test/" + images.paths[0], "https://img.test/" + images.paths[1]}
	if !reflect.DeepEqual(images.removed, want) {
		t.Fatalf("removed = %v, want %v", images.removed, want)
	}

	in.Image = ""
	if _, err := svc.Update(ctx, author.ID, orig.ID, in); err == nil {
		t.Fatal("Update succeeded on a failing store")
	}
	if len(images.removed) != 2 {
		t.Fatalf("kept image was removed: %v", images.removed)
	}
}
