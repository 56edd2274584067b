package middleware

import (
	"crypto/subtle"
	"net/http"

	"flat2study/config"

	"github.com/gin-gonic/gin"
)

// ServiceRoleMiddleware gates trusted server-to-server endpoints behind the
// shared service-role key. When no key is configured the endpoint is open,
// matching a development deployment.
func ServiceRoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.AppConfig.ServiceRoleKey
		if expected == "" {
			c.Next()
			return
		}
		provided := c.GetHeader("X-Service-Role-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service role key"})
			return
		}
		c.Next()
	}
}
