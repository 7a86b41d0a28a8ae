// internal/services/errors.go
package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrSongNotFound       = errors.New("song not found")
	ErrWriterNotFound     = errors.New("managed writer not found")
	ErrPayoutNotFound     = errors.New("payout request not found")
	ErrDealNotFound       = errors.New("sync deal not found")
	ErrSessionNotFound    = errors.New("chat session not found")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrMissingFields      = errors.New("missing required fields")
	ErrAIDisabled         = errors.New("ai is not configured")
	ErrUpstream           = errors.New("upstream request failed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileType           = errors.New("file type not allowed")
)
