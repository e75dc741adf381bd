package middleware

import (
	"fmt"
	"strings"

	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// CurrentIdentity returns the authenticated identity RequireAuth attached to
// this request, if any.
func CurrentIdentity(c *gin.Context) (*services.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*services.Identity)
	return identity, ok
}

// RequireAuth extracts the bearer token, validates the session and attaches
// the resulting identity to the request context. Handlers behind it never run
// for anonymous callers.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(401, gin.H{"success": false, "error": "Invalid authorization header format"})
				c.Abort()
				return
			}
			token = parts[1]
		}

		identity, err := authService.ValidateSession(token)
		if err != nil {
			c.JSON(401, gin.H{"success": false, "error": err.Error()})
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireRole allows the request through only when the authenticated role is
// in the given set. Membership is explicit: admin passes only where a route
// lists admin.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.JSON(401, gin.H{"success": false, "error": "Authentication required"})
			c.Abort()
			return
		}

		hasRole := false
		for _, role := range roles {
			if identity.Role == role {
				hasRole = true
				break
			}
		}

		if !hasRole {
			err := fmt.Errorf("%w. Required: %s", services.ErrInsufficientRole, strings.Join(roles, ", "))
			c.JSON(403, gin.H{"success": false, "error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
