package services

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoToken            = errors.New("no authentication token provided")
	ErrInvalidSession     = errors.New("invalid or expired session token")
	ErrInsufficientRole   = errors.New("insufficient permissions")
	ErrSelfDeletion       = errors.New("cannot delete your own account")
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrDeviceNotFound = errors.New("device not found")
	ErrDeviceIDTaken  = errors.New("device ID already exists")
	ErrAlreadyBanned  = errors.New("device is already banned")
	ErrNotBanned      = errors.New("device is not banned")
)

// storageErr wraps an underlying database failure so callers can match
// ErrStorageUnavailable without losing the cause.
func storageErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}
