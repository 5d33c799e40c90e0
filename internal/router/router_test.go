package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/foodgram-api/config"
	"github.com/oksasatya/foodgram-api/internal/domain/entity"
	"github.com/oksasatya/foodgram-api/internal/infrastructure/memory"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/validation"
)

const pngURI = "data:image/png;base64,cG5nLWJ5dGVz"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	tags   []entity.Tag
	onion  entity.Ingredient
	salt   entity.Ingredient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()
	helpers.PasswordCost = 4

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	mem := memory.New()
	store := mem.Repositories()
	ctx := context.Background()
	ts := &testServer{}
	for _, tag := range []entity.Tag{
		{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	} {
		if err := store.Catalog.UpsertTag(ctx, &tag); err != nil {
			t.Fatalf("UpsertTag: %v", err)
		}
		ts.tags = append(ts.tags, tag)
	}
	ts.onion = entity.Ingredient{Name: "onion", MeasurementUnit: "g"}
	ts.salt = entity.Ingredient{Name: "salt", MeasurementUnit: "g"}
	for _, ing := range []*entity.Ingredient{&ts.onion, &ts.salt} {
		if err := store.Catalog.UpsertIngredient(ctx, ing); err != nil {
			t.Fatalf("UpsertIngredient: %v", err)
		}
	}

	cfg := &config.Config{
		AppName:             "foodgram-test",
		FrontendURL:         "http://localhost:3000",
		PageSize:            6,
		DebugMetricsEnabled: true,
	}
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(r)
	InitModules(reg, Deps{
		Store:  store,
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 2*time.Hour),
	})
	reg.RegisterAll()
	ts.engine = r
	return ts
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %s: %v", env.Data, err)
		}
	}
	return env
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d, body = %s", w.Code, want, w.Body.String())
	}
}

func (s *testServer) register(t *testing.T, username string) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": strings.ToUpper(username[:1]) + username[1:],
		"last_name":  "Cook",
		"password":   "secret-pass",
	})
	expectStatus(t, w, http.StatusCreated)
	var u struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &u)
	return u.ID
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    username + "@example.com",
		"password": "secret-pass",
	})
	expectStatus(t, w, http.StatusOK)
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, w, &tok)
	if tok.AccessToken == "" {
		t.Fatal("empty access token")
	}
	return tok.AccessToken
}

func (s *testServer) createRecipe(t *testing.T, token, name string, ingredients []map[string]any) int64 {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/recipes", token, map[string]any{
		"name":         name,
		"text":         "Cook it.",
		"cooking_time": 30,
		"image":        pngURI,
		"ingredients":  ingredients,
		"tags":         []int64{s.tags[0].ID},
	})
	expectStatus(t, w, http.StatusCreated)
	var rec struct {
		ID int64 `json:"id"`
	}
	decode(t, w, &rec)
	return rec.ID
}

func path(format string, id int64) string {
	return strings.Replace(format, ":id", strconv.FormatInt(id, 10), 1)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	w := s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email": "alice@example.com", "username": "alice2",
		"first_name": "A", "last_name": "B", "password": "secret-pass",
	})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if !strings.Contains(string(env.Error), `"email"`) {
		t.Fatalf("error = %s", env.Error)
	}

	w = s.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"email": "me@example.com", "username": "me",
		"first_name": "A", "last_name": "B", "password": "secret-pass",
	})
	expectStatus(t, w, http.StatusBadRequest)

	w = s.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong-password",
	})
	expectStatus(t, w, http.StatusUnauthorized)

	expectStatus(t, s.do(t, http.MethodGet, "/api/users/me", "", nil), http.StatusUnauthorized)

	token := s.login(t, "alice")
	w = s.do(t, http.MethodGet, "/api/users/me", token, nil)
	expectStatus(t, w, http.StatusOK)
	var me struct {
		Username string `json:"username"`
	}
	decode(t, w, &me)
	if me.Username != "alice" {
		t.Fatalf("me = %+v", me)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/tags", "", nil)
	expectStatus(t, w, http.StatusOK)
	var tags []struct {
		Slug string `json:"slug"`
	}
	decode(t, w, &tags)
	if len(tags) != 2 {
		t.Fatalf("tags = %+v", tags)
	}

	w = s.do(t, http.MethodGet, "/api/ingredients?name=ON", "", nil)
	expectStatus(t, w, http.StatusOK)
	var ings []struct {
		Name string `json:"name"`
	}
	decode(t, w, &ings)
	if len(ings) != 1 || ings[0].Name != "onion" {
		t.Fatalf("ingredients = %+v", ings)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/api/tags/999999", "", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodGet, "/api/ingredients/abc", "", nil), http.StatusNotFound)
}

func TestRecipeFlow(t *testing.T) {
	s := newTestServer(t)
	aliceID := s.register(t, "alice")
	s.register(t, "bob")
	alice, bob := s.login(t, "alice"), s.login(t, "bob")

	a := s.createRecipe(t, alice, "Soup", []map[string]any{{"id": s.onion.ID, "amount": 100}})
	b := s.createRecipe(t, alice, "Salad", []map[string]any{
		{"id": s.onion.ID, "amount": 50},
		{"id": s.salt.ID, "amount": 5},
	})

	expectStatus(t, s.do(t, http.MethodPost, "/api/recipes", "", map[string]any{"name": "x"}), http.StatusUnauthorized)

	// favorites
	expectStatus(t, s.do(t, http.MethodPost, path("/api/recipes/:id/favorite", a), bob, nil), http.StatusCreated)
	w := s.do(t, http.MethodPost, path("/api/recipes/:id/favorite", a), bob, nil)
	expectStatus(t, w, http.StatusBadRequest)
	if env := decode(t, w, nil); env.Message != "recipe is already in favorites" {
		t.Fatalf("message = %q", env.Message)
	}

	var rec struct {
		IsFavorited bool `json:"is_favorited"`
	}
	decode(t, s.do(t, http.MethodGet, path("/api/recipes/:id", a), bob, nil), &rec)
	if !rec.IsFavorited {
		t.Fatal("bob sees is_favorited=false")
	}
	decode(t, s.do(t, http.MethodGet, path("/api/recipes/:id", a), "", nil), &rec)
	if rec.IsFavorited {
		t.Fatal("anonymous sees is_favorited=true")
	}

	var page struct {
		Count int `json:"count"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/recipes?is_favorited=1", bob, nil), &page)
	if page.Count != 1 {
		t.Fatalf("favorited count = %d", page.Count)
	}
	decode(t, s.do(t, http.MethodGet, "/api/recipes?is_favorited=1", "", nil), &page)
	if page.Count != 0 {
		t.Fatalf("anonymous favorited count = %d", page.Count)
	}
	decode(t, s.do(t, http.MethodGet, "/api/recipes?author="+strconv.FormatInt(aliceID, 10), "", nil), &page)
	if page.Count != 2 {
		t.Fatalf("author count = %d", page.Count)
	}

	// shopping cart
	expectStatus(t, s.do(t, http.MethodPost, path("/api/recipes/:id/shopping_cart", a), bob, nil), http.StatusCreated)
	expectStatus(t, s.do(t, http.MethodPost, path("/api/recipes/:id/shopping_cart", b), bob, nil), http.StatusCreated)
	w = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	expectStatus(t, w, http.StatusOK)
	if got, want := w.Body.String(), "Shopping list\nonion - 150 g\nsalt - 5 g\n"; got != want {
		t.Fatalf("shopping list = %q, want %q", got, want)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "shopping_list.txt") {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	expectStatus(t, s.do(t, http.MethodPost, "/api/recipes/send_shopping_cart", bob, nil), http.StatusServiceUnavailable)

	// ownership and validation
	update := map[string]any{
		"name": "Soup", "text": "Cook it.", "cooking_time": 30,
		"ingredients": []map[string]any{}, "tags": []int64{s.tags[0].ID},
	}
	expectStatus(t, s.do(t, http.MethodPatch, path("/api/recipes/:id", a), bob, update), http.StatusForbidden)
	expectStatus(t, s.do(t, http.MethodPatch, path("/api/recipes/:id", a), alice, update), http.StatusBadRequest)
	var full struct {
		Ingredients []struct {
			Amount int `json:"amount"`
		} `json:"ingredients"`
	}
	decode(t, s.do(t, http.MethodGet, path("/api/recipes/:id", a), "", nil), &full)
	if len(full.Ingredients) != 1 || full.Ingredients[0].Amount != 100 {
		t.Fatalf("ingredients after rejected update = %+v", full.Ingredients)
	}

	expectStatus(t, s.do(t, http.MethodGet, "/api/recipes/search?q=soup", "", nil), http.StatusServiceUnavailable)
}

func TestSubscriptionsAndAccountDeletion(t *testing.T) {
	s := newTestServer(t)
	aliceID := s.register(t, "alice")
	bobID := s.register(t, "bob")
	alice, bob := s.login(t, "alice"), s.login(t, "bob")
	a := s.createRecipe(t, alice, "Soup", []map[string]any{{"id": s.onion.ID, "amount": 100}})

	expectStatus(t, s.do(t, http.MethodPost, path("/api/users/:id/subscribe", bobID), bob, nil), http.StatusBadRequest)

	w := s.do(t, http.MethodPost, path("/api/users/:id/subscribe", aliceID)+"?recipes_limit=1", bob, nil)
	expectStatus(t, w, http.StatusCreated)
	var sub struct {
		IsSubscribed bool `json:"is_subscribed"`
		RecipesCount int  `json:"recipes_count"`
	}
	decode(t, w, &sub)
	if !sub.IsSubscribed || sub.RecipesCount != 1 {
		t.Fatalf("subscription = %+v", sub)
	}
	expectStatus(t, s.do(t, http.MethodPost, path("/api/users/:id/subscribe", aliceID), bob, nil), http.StatusBadRequest)

	var page struct {
		Count int `json:"count"`
	}
	decode(t, s.do(t, http.MethodGet, "/api/users/subscriptions", bob, nil), &page)
	if page.Count != 1 {
		t.Fatalf("subscriptions count = %d", page.Count)
	}

	expectStatus(t, s.do(t, http.MethodPost, path("/api/recipes/:id/shopping_cart", a), bob, nil), http.StatusCreated)

	expectStatus(t, s.do(t, http.MethodDelete, "/api/users/me", alice, nil), http.StatusNoContent)
	expectStatus(t, s.do(t, http.MethodGet, path("/api/recipes/:id", a), "", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, http.MethodGet, path("/api/users/:id", aliceID), "", nil), http.StatusNotFound)

	w = s.do(t, http.MethodGet, "/api/recipes/download_shopping_cart", bob, nil)
	expectStatus(t, w, http.StatusOK)
	if w.Body.String() != "Shopping list\n" {
		t.Fatalf("cart after author deletion = %q", w.Body.String())
	}
	decode(t, s.do(t, http.MethodGet, "/api/users/subscriptions", bob, nil), &page)
	if page.Count != 0 {
		t.Fatalf("subscriptions after deletion = %d", page.Count)
	}
}

func TestUnknownRoutesUseEnvelope(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/nope", "", nil)
	expectStatus(t, w, http.StatusNotFound)
	if env := decode(t, w, nil); env.Success || env.Message != "not found" {
		t.Fatalf("envelope = %+v", env)
	}

	w = s.do(t, http.MethodPut, "/api/tags", "", nil)
	expectStatus(t, w, http.StatusMethodNotAllowed)
	if env := decode(t, w, nil); env.Message != "method not allowed" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestDebugVars(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "carol")

	w := s.do(t, http.MethodGet, "/api/debug/vars", "", nil)
	expectStatus(t, w, http.StatusOK)
	var vars map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &vars); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"users_registered", "recipes_created", "catalog_cache"} {
		if _, ok := vars[k]; !ok {
			t.Errorf("missing %q", k)
		}
	}
}

func TestHugePageReturnsEmptyResults(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "dave")

	for _, target := range []string{
		"/api/recipes?page=9223372036854775807",
		"/api/users?page=9223372036854775807",
	} {
		w := s.do(t, http.MethodGet, target, "", nil)
		expectStatus(t, w, http.StatusOK)
		var page struct {
			Count   int               `json:"count"`
			Results []json.RawMessage `json:"results"`
		}
		decode(t, w, &page)
		if len(page.Results) != 0 {
			t.Fatalf("%s results = %d", target, len(page.Results))
		}
	}
}
