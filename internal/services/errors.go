package services

import "errors"

var (
	// Auth
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")

	// Birth profile
	ErrValidation      = errors.New("invalid birth facts")
	ErrProfileNotFound = errors.New("birth profile not found")
	ErrMissingPayload  = errors.New("no birth payload stored")

	// Quota
	ErrQuotaExceeded = errors.New("daily question limit reached")
	ErrQuotaConflict = errors.New("quota update conflict, retry the request")
)
