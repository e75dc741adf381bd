package handlers

import (
	"fmt"
	"strconv"

	"desk-console/internal/api/middleware"
	"desk-console/internal/config"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService  *services.UserService
	auditService *services.AuditService
}

func NewUserHandler(cfg *config.Config, auditService *services.AuditService) *UserHandler {
	return &UserHandler{
		userService:  services.NewUserService(cfg),
		auditService: auditService,
	}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// UpdateUserRequest carries one of the admin actions. Role is required for
// change_role, Password for reset_password.
type UpdateUserRequest struct {
	Action   string `json:"action" binding:"required"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// GetUsers returns all users
func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetUsers()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"success": true, "users": users})
}

// CreateUser creates a new user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Username and password required"})
		return
	}

	user, err := h.userService.CreateUser(req.Username, req.Password, req.Role)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if identity, ok := middleware.CurrentIdentity(c); ok {
		h.auditService.Record(&identity.UserID, services.ActionCreateUser, "",
			fmt.Sprintf("Created user: %s with role: %s", user.Username, user.Role), c.ClientIP())
	}

	c.JSON(201, gin.H{"success": true, "message": "User created successfully", "user": user})
}

// UpdateUser dispatches the admin user-management actions.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	userID := uint(id)

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Action required"})
		return
	}

	identity, _ := middleware.CurrentIdentity(c)

	switch req.Action {
	case "change_role":
		if req.Role == "" {
			c.JSON(400, gin.H{"success": false, "error": "Role required"})
			return
		}
		if err := h.userService.UpdateRole(userID, req.Role); err != nil {
			abortWithError(c, err)
			return
		}
		h.auditService.Record(&identity.UserID, services.ActionUpdateUserRole, "",
			fmt.Sprintf("Changed role of user %d to %s", userID, req.Role), c.ClientIP())
		c.JSON(200, gin.H{"success": true, "message": "User role updated"})

	case "activate":
		if err := h.userService.SetActive(userID, true); err != nil {
			abortWithError(c, err)
			return
		}
		h.auditService.Record(&identity.UserID, services.ActionActivateUser, "",
			fmt.Sprintf("Activated user %d", userID), c.ClientIP())
		c.JSON(200, gin.H{"success": true, "message": "User activated"})

	case "deactivate":
		if err := h.userService.SetActive(userID, false); err != nil {
			abortWithError(c, err)
			return
		}
		h.auditService.Record(&identity.UserID, services.ActionDeactivateUser, "",
			fmt.Sprintf("Deactivated user %d", userID), c.ClientIP())
		c.JSON(200, gin.H{"success": true, "message": "User deactivated"})

	case "reset_password":
		if req.Password == "" {
			c.JSON(400, gin.H{"success": false, "error": "Password required"})
			return
		}
		if err := h.userService.ResetPassword(userID, req.Password); err != nil {
			abortWithError(c, err)
			return
		}
		h.auditService.Record(&identity.UserID, services.ActionResetPassword, "",
			fmt.Sprintf("Reset password for user %d", userID), c.ClientIP())
		c.JSON(200, gin.H{"success": true, "message": "Password reset successfully"})

	default:
		c.JSON(400, gin.H{"success": false, "error": "Invalid action"})
	}
}

// DeleteUser deletes a user. Admins cannot delete their own account.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(400, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}
	userID := uint(id)

	identity, _ := middleware.CurrentIdentity(c)
	if identity != nil && identity.UserID == userID {
		abortWithError(c, services.ErrSelfDeletion)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		abortWithError(c, err)
		return
	}

	h.auditService.Record(&identity.UserID, services.ActionDeleteUser, "",
		fmt.Sprintf("Deleted user %d", userID), c.ClientIP())

	c.JSON(200, gin.H{"success": true, "message": "User deleted successfully"})
}
