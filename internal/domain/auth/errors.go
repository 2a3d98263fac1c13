package auth

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRegistrationFailed  = errors.New("registration failed")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrSessionNotFound     = errors.New("session not found")
	ErrStore               = errors.New("store unavailable")
	ErrTimedOut            = errors.New("operation timed out")
)
