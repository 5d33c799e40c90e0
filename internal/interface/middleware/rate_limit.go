package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/foodgram-api/pkg/response"
)

// KeyFunc builds a rate-limit key from the request.
type KeyFunc func(c *gin.Context) string

// AllowFunc returns true to let a request bypass the limit.
type AllowFunc func(*gin.Context) bool

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + clientIP(c)
	}
}

// KeyByIPAndPath keeps a separate budget per route template, so login
// attempts do not eat into the registration budget.
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		return "rl:path:" + route + ":ip:" + clientIP(c)
	}
}

// KeyByUserID limits authenticated callers per user and anonymous ones per IP.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetInt64(CtxUserIDKey); uid != 0 {
			return "rl:user:" + strconv.FormatInt(uid, 10)
		}
		return "rl:user:anon:ip:" + clientIP(c)
	}
}

// hitScript counts a hit and returns {count, pttl} in one round trip.
// The window starts on the first hit.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

type quota struct {
	limit     int
	remaining int
	reset     int // seconds until the window closes
	blocked   bool
}

func newQuota(limit, count int, ttl time.Duration) quota {
	q := quota{limit: limit, remaining: max(limit-count, 0), blocked: count > limit}
	if ttl > 0 {
		q.reset = int((ttl + time.Second - 1) / time.Second)
	}
	return q
}

func (q quota) write(c *gin.Context) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(q.limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(q.remaining))
	c.Header("X-RateLimit-Reset", strconv.Itoa(q.reset))
	if q.blocked && q.reset > 0 {
		c.Header("Retry-After", strconv.Itoa(q.reset))
	}
}

// RateLimit is a fixed-window limiter backed by Redis. Without Redis it is
// a no-op, and Redis errors let the request through. Preflight requests
// are never counted.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if rdb == nil || limit <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (allow != nil && allow(c)) {
			c.Next()
			return
		}
		res, err := hitScript.Run(c.Request.Context(), rdb, []string{keyFn(c)}, window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			c.Next()
			return
		}
		q := newQuota(limit, int(res[0]), time.Duration(res[1])*time.Millisecond)
		q.write(c)
		if q.blocked {
			response.Error[any](c, http.StatusTooManyRequests, "rate limit exceeded", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
