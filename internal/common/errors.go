// Package common defines shared constants and sentinel errors used across
// client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")

	// Transport errors.
	ErrUnavailable     = errors.New("server unavailable")
	ErrNetworkDegraded = errors.New("network unavailable")
	ErrTimeout         = errors.New("server too slow")

	// Backend answered with a non-2xx status.
	ErrBackendRejected = errors.New("backend rejected request")

	// Local state errors.
	ErrMalformedStoredData = errors.New("malformed stored data")
)
