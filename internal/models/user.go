package models

import (
	"time"
)

// Role values. Authorization is plain set membership per route; there is no
// implicit hierarchy between roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleOperator || role == RoleViewer
}

type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Role         string     `json:"role" gorm:"type:varchar(20);not null;default:'viewer'"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login"`
	IsActive     bool       `json:"is_active" gorm:"not null;default:true"`
}

// Session is an opaque bearer token row. A session is valid while
// expires_at is in the future and the owning user is active.
type Session struct {
	Token        string    `json:"token" gorm:"type:varchar(64);primaryKey"`
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null;index"`
	LastActivity time.Time `json:"last_activity" gorm:"not null"`
	User         User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// AuditEntry rows are append-only. UserID is nullable so entries survive
// user deletion.
type AuditEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Action    string    `json:"action" gorm:"type:varchar(50);not null"`
	DeviceID  string    `json:"device_id" gorm:"type:varchar(100)"`
	Details   string    `json:"details" gorm:"type:text"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(45)"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}
