package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUserInactive is returned when a user exists but is inactive/disabled
	ErrUserInactive = errors.New("user is inactive")

	// ErrTokenNotFound is returned when a refresh token record cannot be found
	ErrTokenNotFound = errors.New("token not found")
)
