package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hero-academy/academy-api/internal/models"
)

// PageGuard protects server-rendered page data routes. Unlike the API
// middleware it never answers with a JSON error: an anonymous visitor is
// redirected to the login page and an authenticated visitor whose role is
// too low is sent back to the root page.
func PageGuard(required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || !claims.Role.Satisfies(required) {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
