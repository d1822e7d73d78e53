package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/hero-academy/academy-api/internal/models"
	appErrors "github.com/hero-academy/academy-api/pkg/errors"
	"github.com/hero-academy/academy-api/pkg/response"
)

// RequireRole gates a route behind a minimum role. ADMIN satisfies every
// gate through the role hierarchy. An insufficient role answers 401 with
// the same body as a missing token, so callers cannot distinguish the two.
func RequireRole(required models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok || !claims.Role.Satisfies(required) {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}
