// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"
	"time"

	profileRepo "flat2study/database/repository/profile"
	"flat2study/models"
	"flat2study/utils"

	"github.com/gin-gonic/gin"
)

// ProfileContextKey is where JWTAuthMiddleware stores the resolved profile.
const ProfileContextKey = "authProfile"

// JWTAuthMiddleware resolves the bearer token to a profile and stores it in
// the request context. A Redis auth cache (token hash → profile id) sits in
// front of the profile lookup.
func JWTAuthMiddleware(profiles profileRepo.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// Validate the token signature and expiration.
		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		profileID, err := resolveProfileID(c, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		prof, err := profiles.GetByID(c.Request.Context(), profileID)
		if err != nil || prof == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Profile not found for token"})
			return
		}

		c.Set(ProfileContextKey, prof)
		c.Next()
	}
}

// resolveProfileID consults the auth cache before decoding the token subject.
func resolveProfileID(c *gin.Context, tokenString string) (string, error) {
	cache := utils.GetAuthCacheClient()
	hash := utils.HashToken(tokenString)

	if id, err := cache.Get(c.Request.Context(), hash).Result(); err == nil && id != "" {
		return id, nil
	}

	id, err := utils.ExtractIDFromToken(tokenString)
	if err != nil {
		return "", err
	}
	cache.Set(c.Request.Context(), hash, id, 15*time.Minute)
	return id, nil
}

// ProfileFromContext returns the authenticated profile set by JWTAuthMiddleware.
func ProfileFromContext(c *gin.Context) *models.Profile {
	v, ok := c.Get(ProfileContextKey)
	if !ok {
		return nil
	}
	prof, _ := v.(*models.Profile)
	return prof
}
