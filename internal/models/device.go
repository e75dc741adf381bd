package models

import "time"

// Device maps the signaling server's peer table. The console only ever
// soft-deletes rows; the server itself owns row creation.
type Device struct {
	GUID      []byte `json:"-" gorm:"column:guid"`
	ID        string `json:"id" gorm:"column:id;type:varchar(100);uniqueIndex"`
	UUID      []byte `json:"-" gorm:"column:uuid"`
	PK        []byte `json:"-" gorm:"column:pk"`
	CreatedAt int64  `json:"created_at" gorm:"column:created_at"`
	UserField []byte `json:"-" gorm:"column:user"`
	Status    *int   `json:"status" gorm:"column:status"`
	Note      string `json:"note" gorm:"column:note"`
	Info      string `json:"info" gorm:"column:info"`

	LastOnline string `json:"last_online" gorm:"column:last_online"`

	IsBanned  bool   `json:"is_banned" gorm:"column:is_banned;default:false"`
	BannedAt  *int64 `json:"banned_at" gorm:"column:banned_at"`
	BannedBy  string `json:"banned_by" gorm:"column:banned_by"`
	BanReason string `json:"ban_reason" gorm:"column:ban_reason"`

	// IsOnline is computed per request, never stored.
	IsOnline bool `json:"online" gorm:"-"`

	IsDeleted bool   `json:"-" gorm:"column:is_deleted;default:false"`
	DeletedAt *int64 `json:"-" gorm:"column:deleted_at"`
	UpdatedAt *int64 `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:false"`
}

func (Device) TableName() string {
	return "peer"
}

// Online reports whether the device should be shown as connected: either the
// server marked it online (status == 1) or it reported in within threshold.
func (d *Device) Online(threshold time.Duration, now time.Time) bool {
	if d.Status != nil && *d.Status == 1 {
		return true
	}
	if d.LastOnline == "" {
		return false
	}
	ts, err := time.Parse(time.RFC3339, d.LastOnline)
	if err != nil {
		return false
	}
	return now.Sub(ts) <= threshold
}
