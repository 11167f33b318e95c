package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"worksync/api/internal/models"
)

// RequireRoles gates a route on the caller's canonical role. The raw role
// string from the identity record is parsed here, so an unrecognized value
// is treated as Employee and never passes an elevated gate.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	roleSet := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		userVal, exists := c.Get("current_user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		user, ok := userVal.(models.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_user"})
			return
		}

		if _, ok := roleSet[models.ParseRole(user.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}
