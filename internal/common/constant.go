// Package common contains shared constants and sentinel errors used across
// the Evently client components.
package common

import "time"

// Storage keys owned by the token store. Both scopes use the same names;
// RememberMeKey only ever lives in the durable scope.
const (
	AccessTokenKey = "accessToken"
	TokenExpiryKey = "tokenExpiry"
	RememberMeKey  = "rememberMe"
	UserDataKey    = "userData"
)

// HTTP header names used on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)

// Backend endpoints, relative to the configured API base URL.
const (
	LoginPath        = "/auth/login"
	LogoutPath       = "/auth/logout"
	RefreshTokenPath = "/auth/refresh-token"
)

const (
	// FallbackTokenLifetime is assumed when a token carries no readable exp claim.
	FallbackTokenLifetime = 15 * time.Minute
	// ExpiryBuffer is subtracted from the expiry so requests never race it.
	ExpiryBuffer = time.Minute
)
