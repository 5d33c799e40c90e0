package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/foodgram-api/internal/interface/http"
	"github.com/oksasatya/foodgram-api/internal/interface/middleware"
	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/token/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/token/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/auth/token/logout", middleware.Auth(m.Redis, m.JWT), m.Handler.Logout)
}
