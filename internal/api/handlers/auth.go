package handlers

import (
	"errors"
	"fmt"

	"desk-console/internal/api/middleware"
	"desk-console/internal/config"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *services.AuthService
	auditService *services.AuditService
	cfg          *config.Config
}

func NewAuthHandler(authService *services.AuthService, auditService *services.AuditService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auditService: auditService,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login authenticates credentials and issues a fresh session token. Each
// login gets its own session; earlier tokens stay valid.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Username and password required"})
		return
	}

	user, err := h.authService.Authenticate(req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	token, err := h.authService.CreateSession(user.ID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": "Failed to create session"})
		return
	}

	h.auditService.Record(&user.ID, services.ActionLogin, "",
		fmt.Sprintf("Login from %s", c.ClientIP()), c.ClientIP())

	c.JSON(200, gin.H{
		"success":  true,
		"token":    token,
		"username": user.Username,
		"role":     user.Role,
	})
}

// Logout deletes the caller's session. Idempotent: logging out twice with
// the first token fails auth, a vanished session row is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(401, gin.H{"success": false, "error": "Not authenticated"})
		return
	}

	if err := h.authService.DeleteSession(identity.Token); err != nil {
		c.JSON(500, gin.H{"success": false, "error": "Failed to logout"})
		return
	}

	// Record only after the session is actually gone.
	h.auditService.Record(&identity.UserID, services.ActionLogout, "",
		"User logged out", c.ClientIP())

	c.JSON(200, gin.H{"success": true, "message": "Logged out successfully"})
}

// Verify reports who the bearer token belongs to.
func (h *AuthHandler) Verify(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(401, gin.H{"success": false, "error": "Not authenticated"})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"user": gin.H{
			"username": identity.Username,
			"role":     identity.Role,
		},
	})
}

// ChangePassword changes the caller's own password. All existing sessions
// (including the one used for this call) are revoked; the response carries a
// fresh token.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(401, gin.H{"success": false, "error": "Not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Old and new password required"})
		return
	}

	if err := h.authService.ChangePassword(identity.UserID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(400, gin.H{"success": false, "error": "Current password is incorrect"})
			return
		}
		abortWithError(c, err)
		return
	}

	token, err := h.authService.CreateSession(identity.UserID)
	if err != nil {
		c.JSON(500, gin.H{"success": false, "error": "Password changed but session creation failed"})
		return
	}

	h.auditService.Record(&identity.UserID, services.ActionChangePassword, "",
		"User changed password", c.ClientIP())

	c.JSON(200, gin.H{
		"success": true,
		"message": "Password changed successfully",
		"token":   token,
	})
}
