package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/foodgram-api/internal/application"
	"github.com/oksasatya/foodgram-api/pkg/pagination"
	"github.com/oksasatya/foodgram-api/pkg/response"
)

type RecipeHandler struct {
	Recipes   *app.RecipeService
	Relations *app.RelationService
	Logger    *logrus.Logger
	PageSize  int
}

func NewRecipeHandler(recipes *app.RecipeService, relations *app.RelationService, logger *logrus.Logger, pageSize int) *RecipeHandler {
	return &RecipeHandler{Recipes: recipes, Relations: relations, Logger: logger, PageSize: pageSize}
}

type ingredientAmount struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type recipeRequest struct {
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
	Image       string             `json:"image"`
	Ingredients []ingredientAmount `json:"ingredients"`
	Tags        []int64            `json:"tags"`
}

func (r recipeRequest) input() app.RecipeInput {
	in := app.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		Image:       r.Image,
		Tags:        r.Tags,
	}
	for _, ia := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, app.IngredientAmount{ID: ia.ID, Amount: ia.Amount})
	}
	return in
}

// List GET /api/recipes?author=&tags=&is_favorited=&is_in_shopping_cart=&page=&limit=
func (h *RecipeHandler) List(c *gin.Context) {
	q := c.Request.URL.Query()
	p := pagination.FromQuery(q, h.PageSize)
	lq := app.ListQuery{
		Tags:      q["tags"],
		Favorited: flag(q, "is_favorited"),
		InCart:    flag(q, "is_in_shopping_cart"),
		Limit:     p.Limit,
		Offset:    p.Offset(),
	}
	if v := q.Get("author"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid author", nil)
			return
		}
		lq.AuthorID = id
	}
	recipes, total, err := h.Recipes.List(c.Request.Context(), currentUser(c), lq)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(requestURL(c), p, total, recipes), "recipes", nil)
}

// Search GET /api/recipes/search?q=
func (h *RecipeHandler) Search(c *gin.Context) {
	p := pagination.FromQuery(c.Request.URL.Query(), h.PageSize)
	recipes, total, err := h.Recipes.Search(c.Request.Context(), currentUser(c), c.Query("q"), p.Limit, p.Offset())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, pagination.New(requestURL(c), p, total, recipes), "recipes", nil)
}

// Get GET /api/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.Recipes.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "recipe", nil)
}

// Create POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Recipes.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "recipe created", nil)
}

// Update PATCH /api/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	v, err := h.Recipes.Update(c.Request.Context(), currentUser(c), id, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "recipe updated", nil)
}

// Delete DELETE /api/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Recipes.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// AddFavorite POST /api/recipes/:id/favorite
func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.mark(c, h.Relations.AddFavorite, "added to favorites")
}

// RemoveFavorite DELETE /api/recipes/:id/favorite
func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.unmark(c, h.Relations.RemoveFavorite)
}

// AddToCart POST /api/recipes/:id/shopping_cart
func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.mark(c, h.Relations.AddToCart, "added to shopping cart")
}

// RemoveFromCart DELETE /api/recipes/:id/shopping_cart
func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.unmark(c, h.Relations.RemoveFromCart)
}

func (h *RecipeHandler) mark(c *gin.Context, fn func(ctx context.Context, userID, recipeID int64) (*app.RecipeShort, error), msg string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := fn(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, msg, nil)
}

func (h *RecipeHandler) unmark(c *gin.Context, fn func(ctx context.Context, userID, recipeID int64) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

// flag treats "1" and "true" as set.
func flag(q url.Values, key string) bool {
	v, err := strconv.ParseBool(q.Get(key))
	return err == nil && v
}

func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	return &u
}
