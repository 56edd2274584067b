package middleware

import (
	"net/http"

	"flat2study/models"

	"github.com/gin-gonic/gin"
)

// AdminOnlyMiddleware runs after JWTAuthMiddleware and rejects profiles
// without the admin role.
func AdminOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		prof := ProfileFromContext(c)
		if prof == nil || prof.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Unauthorized admin access"})
			return
		}
		c.Next()
	}
}
