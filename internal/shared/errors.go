// Package shared holds the sentinel errors and helpers of the dev backend.
package shared

import "errors"

var (
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorInternal      = errors.New("internal error")

	// auth-specific errors
	ErrorUnauthorized            = errors.New("unauthorized")
	ErrorInvalidToken            = errors.New("invalid token")
	ErrorTokenExpired            = errors.New("token expired")
	ErrorRefreshTokenExpired     = errors.New("refresh token expired")
	ErrorInvalidAuthheaderFormat = errors.New("invalid auth header format")
)
