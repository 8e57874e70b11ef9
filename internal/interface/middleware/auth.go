package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linkfolio/linkfolio/internal/application"
	"github.com/linkfolio/linkfolio/pkg/response"
)

// Context keys set by Auth and OptionalAuth.
const (
	CtxAccountIDKey = "accountID"
	CtxSessionIDKey = "sessionID"
)

func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// Auth validates the access token and checks that the backing session is
// still alive, so logout and admin purges revoke access immediately.
func Auth(accounts *application.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := accounts.JWT.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		alive, err := accounts.SessionAlive(c.Request.Context(), claims.AccountID, claims.SessionID)
		if err != nil || !alive {
			response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
			return
		}
		c.Set(CtxAccountIDKey, claims.AccountID)
		c.Set(CtxSessionIDKey, claims.SessionID)
		c.Next()
	}
}

// OptionalAuth resolves the viewer identity when a valid token is present
// and continues anonymously otherwise. Public pages use it to decide the
// viewer class without requiring a login.
func OptionalAuth(accounts *application.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}
		claims, err := accounts.JWT.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		if alive, err := accounts.SessionAlive(c.Request.Context(), claims.AccountID, claims.SessionID); err == nil && alive {
			c.Set(CtxAccountIDKey, claims.AccountID)
			c.Set(CtxSessionIDKey, claims.SessionID)
		}
		c.Next()
	}
}
