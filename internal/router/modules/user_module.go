package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/foodgram-api/internal/interface/http"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

// UserModule wires accounts, profiles and subscriptions.
// Public: POST /users, GET /users, GET /users/:id
// Protected: /users/me, /users/set_password, /users/subscriptions, /users/:id/subscribe
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	optional := middleware.OptionalAuth(m.Redis, m.JWT)

	rg.POST("/users", registerLimiter, m.Handler.Register)
	rg.GET("/users", optional, m.Handler.List)

	auth := rg.Group("/users")
	auth.Use(middleware.Auth(m.Redis, m.JWT))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/me", m.Handler.Me)
		auth.DELETE("/me", m.Handler.DeleteMe)
		auth.POST("/set_password", m.Handler.SetPassword)
		auth.GET("/subscriptions", m.Handler.Subscriptions)
		auth.POST("/:id/subscribe", m.Handler.Subscribe)
		auth.DELETE("/:id/subscribe", m.Handler.Unsubscribe)
	}

	rg.GET("/users/:id", optional, m.Handler.Get)
}
