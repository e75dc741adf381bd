package handlers

import (
	"fmt"
	"strings"

	"desk-console/internal/api/middleware"
	"desk-console/internal/config"
	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
)

type DeviceHandler struct {
	deviceService *services.DeviceService
	auditService  *services.AuditService
}

func NewDeviceHandler(cfg *config.Config, auditService *services.AuditService) *DeviceHandler {
	return &DeviceHandler{
		deviceService: services.NewDeviceService(cfg),
		auditService:  auditService,
	}
}

type UpdateDeviceRequest struct {
	Note  *string `json:"note"`
	NewID string  `json:"new_id"`
}

type BanDeviceRequest struct {
	Reason string `json:"reason"`
}

// GetDevices lists all non-deleted devices with computed online state.
func (h *DeviceHandler) GetDevices(c *gin.Context) {
	devices, err := h.deviceService.GetDevices()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"success": true, "devices": devices})
}

// GetStats summarizes the device registry.
func (h *DeviceHandler) GetStats(c *gin.Context) {
	stats, err := h.deviceService.GetStats()
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(200, gin.H{"success": true, "stats": stats})
}

// UpdateDevice changes a device's note and/or device ID.
func (h *DeviceHandler) UpdateDevice(c *gin.Context) {
	deviceID := c.Param("id")

	var req UpdateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"success": false, "error": "No data provided"})
		return
	}

	if req.Note == nil && req.NewID == "" {
		c.JSON(400, gin.H{"success": false, "error": "No fields to update"})
		return
	}

	if err := h.deviceService.UpdateDevice(deviceID, req.Note, req.NewID); err != nil {
		abortWithError(c, err)
		return
	}

	var changed []string
	if req.Note != nil {
		changed = append(changed, "note")
	}
	if req.NewID != "" {
		changed = append(changed, fmt.Sprintf("new_id: %s", req.NewID))
	}

	identity, _ := middleware.CurrentIdentity(c)
	h.auditService.Record(&identity.UserID, services.ActionUpdateDevice, deviceID,
		fmt.Sprintf("Updated: %s", strings.Join(changed, ", ")), c.ClientIP())

	c.JSON(200, gin.H{"success": true, "message": "Device updated successfully"})
}

// DeleteDevice soft-deletes a device.
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.DeleteDevice(deviceID); err != nil {
		abortWithError(c, err)
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	h.auditService.Record(&identity.UserID, services.ActionDeleteDevice, deviceID,
		"Device deleted", c.ClientIP())

	c.JSON(200, gin.H{"success": true, "message": "Device deleted successfully"})
}

// BanDevice bans a device, recording the acting user as the banner.
func (h *DeviceHandler) BanDevice(c *gin.Context) {
	deviceID := c.Param("id")

	var req BanDeviceRequest
	// Body is optional; a ban without a reason is allowed.
	_ = c.ShouldBindJSON(&req)

	if len(req.Reason) > 500 {
		c.JSON(400, gin.H{"success": false, "error": "Ban reason too long"})
		return
	}

	identity, _ := middleware.CurrentIdentity(c)

	bannedAt, err := h.deviceService.BanDevice(deviceID, req.Reason, identity.Username)
	if err != nil {
		abortWithError(c, err)
		return
	}

	h.auditService.Record(&identity.UserID, services.ActionBanDevice, deviceID,
		fmt.Sprintf("Banned device. Reason: %s", req.Reason), c.ClientIP())

	c.JSON(200, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("Device %s banned successfully", deviceID),
		"banned_at": bannedAt,
		"banned_by": identity.Username,
	})
}

// UnbanDevice lifts a ban.
func (h *DeviceHandler) UnbanDevice(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.deviceService.UnbanDevice(deviceID); err != nil {
		abortWithError(c, err)
		return
	}

	identity, _ := middleware.CurrentIdentity(c)
	h.auditService.Record(&identity.UserID, services.ActionUnbanDevice, deviceID,
		"Device unbanned", c.ClientIP())

	c.JSON(200, gin.H{
		"success": true,
		"message": fmt.Sprintf("Device %s unbanned successfully", deviceID),
	})
}
