package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yuriataaide/dailydiet/internal"
)

// CookieName is the cookie that carries the anonymous session token.
const CookieName = "sessionId"

const (
	contextKey   = "session_id"
	cookieMaxAge = 60 * 60 * 24 * 7 // 7 days
)

// Middleware resolves the session token from the request cookie, minting a
// fresh one (and setting it on the response) when the client has none. The
// minted token is used for the rest of the same request.
func Middleware(logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			token = uuid.NewString()
			logger.Debugf("no session cookie found, minting %s", token)
			c.SetCookie(CookieName, token, cookieMaxAge, "/", "", false, true)
		}
		c.Set(contextKey, token)
		c.Next()
	}
}

// Require rejects requests without a session cookie. It never mints.
func Require(logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			logger.Warnf("rejected %s %s: no session cookie", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": internal.NewAppError(http.StatusUnauthorized, "session cookie required"),
			})
			return
		}
		c.Set(contextKey, token)
		c.Next()
	}
}

// FromContext returns the session token resolved by Middleware or Require.
func FromContext(c *gin.Context) string {
	return c.GetString(contextKey)
}
