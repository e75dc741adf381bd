package services

import (
	"errors"
	"time"

	"desk-console/internal/config"
	"desk-console/internal/models"

	"gorm.io/gorm"
)

// DeviceService reads and mutates the signaling server's peer table. Rows are
// never physically removed; deletion is a soft-delete flag the server's own
// registration path respects.
type DeviceService struct {
	cfg *config.Config
}

func NewDeviceService(cfg *config.Config) *DeviceService {
	return &DeviceService{cfg: cfg}
}

func (s *DeviceService) onlineThreshold() time.Duration {
	return time.Duration(s.cfg.Devices.OnlineThresholdSeconds) * time.Second
}

// GetDevices returns all non-deleted devices, newest first, with computed
// online state.
func (s *DeviceService) GetDevices() ([]models.Device, error) {
	var devices []models.Device
	if err := models.DB.Where("is_deleted = ?", false).
		Order("created_at DESC").Find(&devices).Error; err != nil {
		return nil, storageErr(err)
	}

	now := time.Now()
	threshold := s.onlineThreshold()
	for i := range devices {
		devices[i].IsOnline = devices[i].Online(threshold, now)
	}
	return devices, nil
}

// GetDevice returns a single non-deleted device by its device ID.
func (s *DeviceService) GetDevice(deviceID string) (*models.Device, error) {
	var device models.Device
	if err := models.DB.Where("id = ? AND is_deleted = ?", deviceID, false).
		First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, storageErr(err)
	}
	device.IsOnline = device.Online(s.onlineThreshold(), time.Now())
	return &device, nil
}

// UpdateDevice updates a device's note and/or assigns it a new device ID.
// nil means leave the note untouched.
func (s *DeviceService) UpdateDevice(deviceID string, note *string, newID string) error {
	updates := map[string]interface{}{}

	if note != nil {
		updates["note"] = *note
	}

	if newID != "" {
		// The unique index on the id column covers soft-deleted rows, so the
		// conflict check must not filter on is_deleted.
		var existing models.Device
		err := models.DB.Where("id = ?", newID).First(&existing).Error
		if err == nil {
			return ErrDeviceIDTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr(err)
		}
		updates["id"] = newID
	}

	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UnixMilli()

	res := models.DB.Model(&models.Device{}).
		Where("id = ? AND is_deleted = ?", deviceID, false).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDeviceIDTaken
		}
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// DeleteDevice soft-deletes a device.
func (s *DeviceService) DeleteDevice(deviceID string) error {
	now := time.Now().UnixMilli()
	res := models.DB.Model(&models.Device{}).
		Where("id = ? AND is_deleted = ?", deviceID, false).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": now})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// BanDevice bans a device, recording who banned it and why. Banning an
// already-banned device is a conflict, not a no-op.
func (s *DeviceService) BanDevice(deviceID, reason, bannedBy string) (int64, error) {
	device, err := s.GetDevice(deviceID)
	if err != nil {
		return 0, err
	}
	if device.IsBanned {
		return 0, ErrAlreadyBanned
	}

	bannedAt := time.Now().UnixMilli()
	res := models.DB.Model(&models.Device{}).
		Where("id = ? AND is_deleted = ?", deviceID, false).
		Updates(map[string]interface{}{
			"is_banned":  true,
			"banned_at":  bannedAt,
			"banned_by":  bannedBy,
			"ban_reason": reason,
			"updated_at": bannedAt,
		})
	if res.Error != nil {
		return 0, storageErr(res.Error)
	}
	return bannedAt, nil
}

// UnbanDevice lifts a ban and clears the ban metadata.
func (s *DeviceService) UnbanDevice(deviceID string) error {
	device, err := s.GetDevice(deviceID)
	if err != nil {
		return err
	}
	if !device.IsBanned {
		return ErrNotBanned
	}

	res := models.DB.Model(&models.Device{}).
		Where("id = ? AND is_deleted = ?", deviceID, false).
		Updates(map[string]interface{}{
			"is_banned":  false,
			"banned_at":  nil,
			"banned_by":  "",
			"ban_reason": "",
			"updated_at": time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return storageErr(res.Error)
	}
	return nil
}

// DeviceStats summarizes the registry for the dashboard.
type DeviceStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Inactive  int64 `json:"inactive"`
	WithNotes int64 `json:"with_notes"`
	Banned    int64 `json:"banned"`
}

// GetStats counts devices by state. Online counting goes through the same
// threshold logic as the listing so the two never disagree.
func (s *DeviceService) GetStats() (*DeviceStats, error) {
	devices, err := s.GetDevices()
	if err != nil {
		return nil, err
	}

	stats := &DeviceStats{Total: int64(len(devices))}
	for _, d := range devices {
		if d.IsOnline {
			stats.Active++
		}
		if d.Note != "" {
			stats.WithNotes++
		}
		if d.IsBanned {
			stats.Banned++
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats, nil
}
