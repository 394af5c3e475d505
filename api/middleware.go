package api

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// Authenticate validates the bearer token and stores the caller identity on
// the request context. Credentials themselves are never re-validated here.
func Authenticate(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserRole) != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required", "code": string(domain.KindAuthorization)})
			return
		}
		c.Next()
	}
}
