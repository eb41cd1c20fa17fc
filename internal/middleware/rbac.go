package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
	"github.com/noah-isme/consultation-api/pkg/response"
)

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ConsultantScope returns the consultant id a caller is restricted to. Roles that see every
// record get "".
func ConsultantScope(c *gin.Context) string {
	return Claims(c).ConsultantScope()
}
