package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"desk-console/internal/models"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// guardedStatus sends a request through RequireRole with the given role
// already attached to the request and reports the resulting status code.
// An empty role means no identity at all.
func guardedStatus(role string, allowed ...string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", func(c *gin.Context) {
		if role != "" {
			c.Set(identityKey, &services.Identity{UserID: 1, Username: "someone", Role: role})
		}
	}, RequireRole(allowed...), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/guarded", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireRoleSetMembership(t *testing.T) {
	t.Run("role in the set passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, guardedStatus(models.RoleOperator, models.RoleOperator))
		assert.Equal(t, http.StatusOK, guardedStatus(models.RoleAdmin, models.RoleAdmin, models.RoleOperator))
		assert.Equal(t, http.StatusOK, guardedStatus(models.RoleViewer, models.RoleAdmin, models.RoleViewer))
	})

	t.Run("admin is not an implicit member of other sets", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, guardedStatus(models.RoleAdmin, models.RoleOperator))
		assert.Equal(t, http.StatusForbidden, guardedStatus(models.RoleAdmin, models.RoleViewer))
	})

	t.Run("role outside the set is denied", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, guardedStatus(models.RoleViewer, models.RoleAdmin, models.RoleOperator))
		assert.Equal(t, http.StatusForbidden, guardedStatus(models.RoleOperator, models.RoleAdmin))
	})

	t.Run("missing identity is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, guardedStatus("", models.RoleAdmin))
	})
}
