package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/foodgram-api/internal/interface/http"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

type RecipeModule struct {
	Recipes  *handlers.RecipeHandler
	Shopping *handlers.ShoppingHandler
	Redis    *redis.Client
	JWT      *helpers.JWTManager
}

func NewRecipeModule(recipes *handlers.RecipeHandler, shopping *handlers.ShoppingHandler, rdb *redis.Client, jwt *helpers.JWTManager) *RecipeModule {
	return &RecipeModule{Recipes: recipes, Shopping: shopping, Redis: rdb, JWT: jwt}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	optional := middleware.OptionalAuth(m.Redis, m.JWT)
	searchLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/recipes", optional, m.Recipes.List)
	rg.GET("/recipes/search", searchLimiter, optional, m.Recipes.Search)

	auth := rg.Group("/recipes")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Recipes.Create)
		auth.PATCH("/:id", m.Recipes.Update)
		auth.DELETE("/:id", m.Recipes.Delete)

		auth.POST("/:id/favorite", m.Recipes.AddFavorite)
		auth.DELETE("/:id/favorite", m.Recipes.RemoveFavorite)
		auth.POST("/:id/shopping_cart", m.Recipes.AddToCart)
		auth.DELETE("/:id/shopping_cart", m.Recipes.RemoveFromCart)

		auth.GET("/shopping_cart", m.Shopping.Items)
		auth.GET("/download_shopping_cart", m.Shopping.Download)
		auth.POST("/send_shopping_cart",
			middleware.RateLimit(m.Redis, 5, time.Minute, middleware.KeyByUserID(), nil),
			m.Shopping.Send)
	}

	rg.GET("/recipes/:id", optional, m.Recipes.Get)
}
