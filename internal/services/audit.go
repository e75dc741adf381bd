package services

import (
	"time"

	"desk-console/internal/models"

	"go.uber.org/zap"
)

// AuditService appends security-relevant actions to the audit_log table.
// A failed write never propagates to the caller: losing an audit row is
// degraded observability, not a reason to fail the audited action.
type AuditService struct {
	log *zap.Logger
}

func NewAuditService(log *zap.Logger) *AuditService {
	return &AuditService{log: log}
}

// Record appends one audit entry. userID may be nil for system or
// anonymous-triggered events.
func (s *AuditService) Record(userID *uint, action, deviceID, details, ipAddress string) {
	if ipAddress == "" {
		ipAddress = "unknown"
	}

	entry := &models.AuditEntry{
		UserID:    userID,
		Action:    action,
		DeviceID:  deviceID,
		Details:   details,
		IPAddress: ipAddress,
		Timestamp: time.Now(),
	}

	if err := models.DB.Create(entry).Error; err != nil {
		s.log.Warn("failed to write audit entry",
			zap.String("action", action),
			zap.Error(err))
	}
}

// Audit action tags. Stable identifiers; the details column carries the
// free-text part.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionChangePassword = "change_password"
	ActionCreateUser     = "create_user"
	ActionUpdateUserRole = "update_user_role"
	ActionActivateUser   = "activate_user"
	ActionDeactivateUser = "deactivate_user"
	ActionResetPassword  = "reset_password"
	ActionDeleteUser     = "delete_user"
	ActionUpdateDevice   = "update_device"
	ActionDeleteDevice   = "delete_device"
	ActionBanDevice      = "ban_device"
	ActionUnbanDevice    = "unban_device"
)
