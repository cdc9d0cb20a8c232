package client

import "errors"

// ErrInvalidToken indicates a token that cannot be stored (empty or
// containing whitespace or control characters).
var ErrInvalidToken = errors.New("invalid token")

// ErrSessionExpired indicates the refresh flow failed and the caller must
// log in again. Local token state has already been cleared when this is
// returned.
var ErrSessionExpired = errors.New("session expired")

// ErrCallback indicates the OAuth callback could not be completed
var ErrCallback = errors.New("authorization callback failed")
