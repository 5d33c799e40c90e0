package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/foodgram-api/internal/interface/http"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
)

type CatalogModule struct {
	Handler *handlers.CatalogHandler
	Redis   *redis.Client
}

func NewCatalogModule(h *handlers.CatalogHandler, rdb *redis.Client) *CatalogModule {
	return &CatalogModule{Handler: h, Redis: rdb}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 300, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/tags", rl, m.Handler.Tags)
	rg.GET("/tags/:id", rl, m.Handler.Tag)
	rg.GET("/ingredients", rl, m.Handler.Ingredients)
	rg.GET("/ingredients/:id", rl, m.Handler.Ingredient)
}
