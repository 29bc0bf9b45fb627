package service

import "errors"

// The error taxonomy of the auth core. Callers match with errors.Is; the
// HTTP layer maps each sentinel to a status code. Store conflicts
// (store.ErrConflict) pass through unchanged.
var (
	ErrValidation          = errors.New("validation failed")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrMissingCredential   = errors.New("missing social credential")
	ErrSocialTokenInvalid  = errors.New("invalid social token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrStaleRefreshToken   = errors.New("stale refresh token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrAccountLocked       = errors.New("account locked")
)
