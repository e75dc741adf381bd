package middleware

import (
	"math/rand"

	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionSweeper deletes expired sessions on roughly one in a hundred
// requests. Amortizing the sweep into request handling avoids a dedicated
// timer; expired tokens are rejected on validation regardless, so the sweep
// only reclaims rows. Failures never affect the in-flight request.
func SessionSweeper(authService *services.AuthService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rand.Intn(100) == 0 {
			if count, err := authService.SweepExpired(); err != nil {
				log.Warn("session sweep failed", zap.Error(err))
			} else if count > 0 {
				log.Debug("swept expired sessions", zap.Int64("count", count))
			}
		}
		c.Next()
	}
}
