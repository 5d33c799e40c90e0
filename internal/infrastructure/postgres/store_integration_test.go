//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/domain/repository"
)

const migrationsDir = "../../../db/migrations"

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// startPostgres runs a throwaway Postgres, applies the migrations and
// returns a store on top of it.
func startPostgres(t *testing.T) repository.Store {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "foodgram",
			"POSTGRES_PASSWORD": "foodgram",
			"POSTGRES_DB":       "foodgram",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(2 * time.Minute),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://foodgram:foodgram@%s:%s/foodgram?sslmode=disable", host, port.Port())

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		t.Fatalf("migrate driver: %v", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}

	pool, err := OpenPool(ctx, PoolOptions{DSN: dsn, MaxConns: 4, MinConns: 1, ConnectAttempts: 3})
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return NewStore(pool)
}

type seeded struct {
	alice, bob  entity.User
	lunch       entity.Tag
	onion, salt entity.Ingredient
	onionPieces entity.Ingredient
	soup, salad entity.Recipe
}

func seed(t *testing.T, s repository.Store) seeded {
	t.Helper()
	ctx := context.Background()
	var d seeded
	for _, u := range []*entity.User{&d.alice, &d.bob} {
		name := "alice"
		if u == &d.bob {
			name = "bob"
		}
		*u = entity.User{Email: name + "@example.com", Username: name, FirstName: name, LastName: "Cook", Password: "hash"}
		if err := s.Users.Create(ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	d.lunch = entity.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	if err := s.Catalog.UpsertTag(ctx, &d.lunch); err != nil {
		t.Fatalf("tag: %v", err)
	}
	d.onion = entity.Ingredient{Name: "onion", MeasurementUnit: "g"}
	d.salt = entity.Ingredient{Name: "salt", MeasurementUnit: "g"}
	d.onionPieces = entity.Ingredient{Name: "onion", MeasurementUnit: "pcs"}
	for _, ing := range []*entity.Ingredient{&d.onion, &d.salt, &d.onionPieces} {
		if err := s.Catalog.UpsertIngredient(ctx, ing); err != nil {
			t.Fatalf("ingredient: %v", err)
		}
	}

	d.soup = recipe(d.alice.ID, "Soup", d.lunch, amount(d.onion, 100))
	d.salad = recipe(d.alice.ID, "Salad", d.lunch, amount(d.onion, 50), amount(d.salt, 5), amount(d.onionPieces, 2))
	for _, r := range []*entity.Recipe{&d.soup, &d.salad} {
		if err := s.Recipes.Create(ctx, r); err != nil {
			t.Fatalf("create recipe: %v", err)
		}
	}
	return d
}

func amount(i entity.Ingredient, n int) entity.RecipeIngredient {
	return entity.RecipeIngredient{IngredientID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit, Amount: n}
}

func recipe(author int64, name string, tag entity.Tag, ings ...entity.RecipeIngredient) entity.Recipe {
	return entity.Recipe{
		AuthorID:    author,
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 20,
		Image:       "https://img.test/" + name,
		Ingredients: ings,
		Tags:        []entity.Tag{tag},
	}
}

func TestShoppingRowsGroupByNameAndUnit(t *testing.T) {
	s := startPostgres(t)
	d := seed(t, s)
	ctx := context.Background()

	for _, id := range []int64{d.soup.ID, d.salad.ID} {
		if err := s.Marks.Add(ctx, repository.ShoppingCart, d.bob.ID, id); err != nil {
			t.Fatalf("add to cart: %v", err)
		}
	}
	rows, err := s.Marks.ShoppingRows(ctx, d.bob.ID)
	if err != nil {
		t.Fatalf("ShoppingRows: %v", err)
	}
	want := []entity.ShoppingItem{
		{Name: "onion", MeasurementUnit: "g", Amount: 150},
		{Name: "onion", MeasurementUnit: "pcs", Amount: 2},
		{Name: "salt", MeasurementUnit: "g", Amount: 5},
	}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v", rows)
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}

func TestUniqueConstraintsBackstopDuplicates(t *testing.T) {
	s := startPostgres(t)
	d := seed(t, s)
	ctx := context.Background()

	if err := s.Marks.Add(ctx, repository.Favorite, d.bob.ID, d.soup.ID); err != nil {
		t.Fatalf("favorite: %v", err)
	}
	err := s.Marks.Add(ctx, repository.Favorite, d.bob.ID, d.soup.ID)
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second favorite err = %v", err)
	}

	if err := s.Follows.Follow(ctx, d.bob.ID, d.alice.ID); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := s.Follows.Follow(ctx, d.bob.ID, d.alice.ID); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second follow err = %v", err)
	}
	if err := s.Follows.Follow(ctx, d.bob.ID, d.bob.ID); err == nil {
		t.Fatal("self follow accepted")
	}

	dup := entity.User{Email: "alice@example.com", Username: "alice3", Password: "x"}
	if err := s.Users.Create(ctx, &dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate email err = %v", err)
	}
}

func TestUpdateReplacesIngredientSet(t *testing.T) {
	s := startPostgres(t)
	d := seed(t, s)
	ctx := context.Background()

	updated := d.salad
	updated.Name = "Salted onion"
	updated.Ingredients = []entity.RecipeIngredient{amount(d.salt, 7)}
	if err := s.Recipes.Update(ctx, &updated); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := s.Recipes.GetByID(ctx, d.salad.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Salted onion" || len(got.Ingredients) != 1 || got.Ingredients[0].Amount != 7 {
		t.Fatalf("recipe after update = %+v", got)
	}

	bad := updated
	bad.Ingredients = []entity.RecipeIngredient{amount(d.salt, 1), {IngredientID: 999999, Amount: 1}}
	if err := s.Recipes.Update(ctx, &bad); err == nil {
		t.Fatal("update with unknown ingredient accepted")
	}
	got, err = s.Recipes.GetByID(ctx, d.salad.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Ingredients) != 1 || got.Ingredients[0].Amount != 7 {
		t.Fatalf("failed update leaked: %+v", got.Ingredients)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := startPostgres(t)
	d := seed(t, s)
	ctx := context.Background()

	if err := s.Marks.Add(ctx, repository.Favorite, d.bob.ID, d.soup.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Marks.Add(ctx, repository.ShoppingCart, d.bob.ID, d.salad.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Follows.Follow(ctx, d.bob.ID, d.alice.ID); err != nil {
		t.Fatal(err)
	}

	if err := s.Users.Delete(ctx, d.alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Recipes.GetByID(ctx, d.soup.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("recipe after author deletion err = %v", err)
	}
	if ok, _ := s.Marks.Exists(ctx, repository.Favorite, d.bob.ID, d.soup.ID); ok {
		t.Fatal("favorite survived")
	}
	rows, err := s.Marks.ShoppingRows(ctx, d.bob.ID)
	if err != nil || len(rows) != 0 {
		t.Fatalf("cart after deletion = %+v, %v", rows, err)
	}
	if ok, _ := s.Follows.IsFollowing(ctx, d.bob.ID, d.alice.ID); ok {
		t.Fatal("follow survived")
	}
	if err := s.Users.Delete(ctx, d.alice.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
