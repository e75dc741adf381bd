package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"desk-console/internal/config"
	"desk-console/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Identity is the request-scoped result of a successful session validation.
type Identity struct {
	UserID   uint
	Username string
	Role     string
	Token    string
}

type AuthService struct {
	cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// HashPassword hashes a password using bcrypt
func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.Security.BcryptCost)
	return string(bytes), err
}

// VerifyPassword verifies a password against a hash
func (s *AuthService) VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// generateToken returns a URL-safe random bearer token with 256 bits of
// entropy. Safe to place in an Authorization header as-is.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CreateUser creates a new user with a hashed password. The plaintext is
// never persisted.
func (s *AuthService) CreateUser(username, password, role string) (*models.User, error) {
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	var existing models.User
	if err := models.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr(err)
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
		IsActive:     true,
	}

	if err := models.DB.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, storageErr(err)
	}

	return user, nil
}

// Authenticate verifies credentials and returns the user. Unknown usernames
// and wrong passwords report the same error.
func (s *AuthService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := models.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageErr(err)
	}

	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if !s.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// CreateSession issues a new session token for the user and records the
// login time. Concurrent logins each get their own session.
func (s *AuthService) CreateSession(userID uint) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &models.Session{
		Token:        token,
		UserID:       userID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.SessionTTL()),
		LastActivity: now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("last_login", now).Error
	})
	if err != nil {
		return "", storageErr(err)
	}

	return token, nil
}

// ValidateSession resolves a bearer token to an identity. Expired sessions
// and sessions of deactivated users are deleted on discovery.
func (s *AuthService) ValidateSession(token string) (*Identity, error) {
	if token == "" {
		return nil, ErrNoToken
	}

	var session models.Session
	if err := models.DB.Where("token = ?", token).Preload("User").First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, storageErr(err)
	}

	if time.Now().After(session.ExpiresAt) || !session.User.IsActive {
		models.DB.Where("token = ?", token).Delete(&models.Session{})
		return nil, ErrInvalidSession
	}

	// Best-effort; losing this update under a race is acceptable.
	models.DB.Model(&models.Session{}).Where("token = ?", token).
		Update("last_activity", time.Now())

	return &Identity{
		UserID:   session.UserID,
		Username: session.User.Username,
		Role:     session.User.Role,
		Token:    token,
	}, nil
}

// DeleteSession deletes a session. Idempotent.
func (s *AuthService) DeleteSession(token string) error {
	if err := models.DB.Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

// DeleteAllSessionsForUser removes every session owned by the user.
// Used by the credential-change cascade paths. Idempotent.
func (s *AuthService) DeleteAllSessionsForUser(userID uint) error {
	if err := models.DB.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		return storageErr(err)
	}
	return nil
}

// SweepExpired removes expired sessions and returns how many were deleted.
func (s *AuthService) SweepExpired() (int64, error) {
	res := models.DB.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, storageErr(res.Error)
	}
	return res.RowsAffected, nil
}

// ChangePassword verifies the old password, stores the new hash and revokes
// every existing session for the user in the same transaction. The caller is
// expected to issue a fresh session afterwards.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := models.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return storageErr(err)
	}

	if !s.VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}

	newHash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Update("password_hash", newHash).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&models.Session{}).Error
	})
	if err != nil {
		return storageErr(err)
	}
	return nil
}

// EnsureDefaultAdmin creates the bootstrap admin account with a random
// password when the users table is empty. The generated password is written
// to admin_credentials.txt beside the SQLite database and returned so the
// caller can log it once.
func (s *AuthService) EnsureDefaultAdmin() (string, error) {
	var count int64
	if err := models.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return "", storageErr(err)
	}
	if count > 0 {
		return "", nil
	}

	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	password := base64.RawURLEncoding.EncodeToString(buf)

	if _, err := s.CreateUser("admin", password, models.RoleAdmin); err != nil {
		return "", err
	}

	if s.cfg.Database.Type == "sqlite" {
		credsFile := filepath.Join(filepath.Dir(s.cfg.Database.SQLite.Path), "admin_credentials.txt")
		content := fmt.Sprintf("Desk Console - Default Admin Credentials\nGenerated: %s\n\nUsername: admin\nPassword: %s\n\nChange this password after first login.\n",
			time.Now().Format(time.RFC3339), password)
		// Best-effort: the password is also surfaced in the startup log.
		_ = os.WriteFile(credsFile, []byte(content), 0600)
	}

	return password, nil
}
