package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// The refresh token is only sent to the token endpoints.
	refreshCookiePath = "/api/auth/token"
)

// CookieJar writes the auth cookies. Both are HttpOnly and SameSite=Lax.
type CookieJar struct {
	Domain string
	Secure bool
}

func NewCookieJar(domain string, secure bool) *CookieJar {
	return &CookieJar{Domain: domain, Secure: secure}
}

func (j *CookieJar) SetTokens(c *gin.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	j.set(c, AccessCookie, access, "/", secondsUntil(accessExp))
	j.set(c, RefreshCookie, refresh, refreshCookiePath, secondsUntil(refreshExp))
}

func (j *CookieJar) Clear(c *gin.Context) {
	j.set(c, AccessCookie, "", "/", -1)
	j.set(c, RefreshCookie, "", refreshCookiePath, -1)
}

func (j *CookieJar) set(c *gin.Context, name, value, path string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, j.Domain, j.Secure, true)
}

func secondsUntil(t time.Time) int {
	return max(int(time.Until(t).Seconds()), 0)
}
