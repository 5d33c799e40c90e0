package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/foodgram-api/pkg/helpers"
	"github.com/oksasatya/foodgram-api/pkg/response"
)

// Auth validates the access token and, when Redis is configured, ensures the
// token belongs to the user's active session. It sets userID (int64) in the
// Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, msg := authenticate(c, rdb, jwt)
		if uid == 0 {
			response.Error[any](c, http.StatusUnauthorized, msg, nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// accessToken prefers the Authorization header and falls back to the cookie.
func accessToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && (strings.EqualFold(scheme, "Bearer") || strings.EqualFold(scheme, "Token")) {
			return strings.TrimSpace(tok)
		}
	}
	tok, _ := c.Cookie(helpers.AccessCookie)
	return tok
}

// authenticate returns the user id, or 0 and the reason.
func authenticate(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager) (int64, string) {
	token := accessToken(c)
	if token == "" {
		return 0, "missing access token"
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return 0, "invalid access token"
	}
	if rdb != nil {
		sid, err := rdb.HGet(c.Request.Context(), helpers.SessionKey(claims.UserID), "sid").Result()
		if err != nil || sid != claims.SessionID {
			return 0, "session not found"
		}
	}
	return claims.UserID, ""
}
