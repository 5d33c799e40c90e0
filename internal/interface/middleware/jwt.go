package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/foodgram-api/pkg/helpers"
)

const CtxUserIDKey = "userID"

// OptionalAuth sets userID when the request carries a valid token and lets
// anonymous requests through untouched.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, _ := authenticate(c, rdb, jwt); uid != 0 {
			c.Set(CtxUserIDKey, uid)
		}
		c.Next()
	}
}
