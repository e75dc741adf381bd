package handlers

import (
	"errors"

	"desk-console/internal/services"

	"github.com/gin-gonic/gin"
)

// statusForError maps the service error taxonomy to HTTP status codes.
// Authentication failures are 401, authorization 403, conflicts 409; anything
// wrapping a storage failure is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNoToken),
		errors.Is(err, services.ErrInvalidSession),
		errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrAccountDisabled):
		return 401
	case errors.Is(err, services.ErrInsufficientRole):
		return 403
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrDeviceNotFound):
		return 404
	case errors.Is(err, services.ErrDeviceIDTaken),
		errors.Is(err, services.ErrAlreadyBanned),
		errors.Is(err, services.ErrNotBanned):
		return 409
	case errors.Is(err, services.ErrDuplicateUsername),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrSelfDeletion):
		return 400
	case errors.Is(err, services.ErrStorageUnavailable):
		return 500
	default:
		return 500
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusForError(err), gin.H{"success": false, "error": err.Error()})
}
