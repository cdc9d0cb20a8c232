package services

import (
	"errors"

	"github.com/gitmaxhq/gitmax/internal/domain/repositories"
)

// ErrCallbackFailed indicates the GitHub OAuth callback could not be completed
var ErrCallbackFailed = errors.New("authorization callback failed")

// ErrInvalidRefreshToken indicates the presented refresh token is unknown,
// revoked, or its secret does not match.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// ErrRefreshTokenExpired indicates the refresh token has passed its expiry
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// IsUserInactive checks if the error indicates an inactive user.
func IsUserInactive(err error) bool {
	return errors.Is(err, repositories.ErrUserInactive)
}

// IsUserNotFound checks if the error indicates user not found.
func IsUserNotFound(err error) bool {
	return errors.Is(err, repositories.ErrUserNotFound)
}
