package services

import (
	"errors"
	"fmt"

	"desk-console/internal/config"
	"desk-console/internal/models"

	"gorm.io/gorm"
)

// UserService covers the admin user-management surface. Every mutation that
// touches credentials or the active flag revokes the target user's sessions
// in the same transaction, so a concurrently validated token either sees the
// old state fully intact or fully gone.
type UserService struct {
	authService *AuthService
}

func NewUserService(cfg *config.Config) *UserService {
	return &UserService{
		authService: NewAuthService(cfg),
	}
}

// GetUsers returns all users, newest first.
func (s *UserService) GetUsers() ([]models.User, error) {
	var users []models.User
	if err := models.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, storageErr(err)
	}
	return users, nil
}

// GetUser returns a specific user by ID
func (s *UserService) GetUser(id uint) (*models.User, error) {
	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr(err)
	}
	return &user, nil
}

// CreateUser creates a new user
func (s *UserService) CreateUser(username, password, role string) (*models.User, error) {
	return s.authService.CreateUser(username, password, role)
}

// UpdateRole changes a user's role.
func (s *UserService) UpdateRole(id uint, role string) error {
	if !models.ValidRole(role) {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	res := models.DB.Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return storageErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive activates or deactivates an account. Deactivation deletes every
// session the user holds; a token validated mid-flight never outlives it.
// Reactivation does not resurrect old sessions.
func (s *UserService) SetActive(id uint, active bool) error {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("is_active", active)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		if !active {
			return tx.Where("user_id = ?", id).Delete(&models.Session{}).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}
	return nil
}

// ResetPassword sets a new password without checking the old one (admin
// path) and revokes all of the user's sessions in the same transaction.
func (s *UserService) ResetPassword(id uint, newPassword string) error {
	newHash, err := s.authService.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Update("password_hash", newHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return tx.Where("user_id = ?", id).Delete(&models.Session{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}
	return nil
}

// DeleteUser removes a user and their sessions. Audit entries survive with
// their user reference cleared. The self-deletion guard lives at the
// handler, which knows the caller's identity.
func (s *UserService) DeleteUser(id uint) error {
	var user models.User
	if err := models.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.AuditEntry{}).Where("user_id = ?", id).
			Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// GetSessions returns active sessions for a user
func (s *UserService) GetSessions(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	if err := models.DB.Where("user_id = ?", userID).Find(&sessions).Error; err != nil {
		return nil, storageErr(err)
	}
	return sessions, nil
}
