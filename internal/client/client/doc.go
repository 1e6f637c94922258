// Package client talks HTTP to the Evently backend on behalf of the local
// session.
//
// # Overview
//
// HTTPClient is the concrete implementation of the Client interface. It:
//  1. Sends authenticated requests (Do), attaching the bearer token from the
//     token store and the backend's refresh cookie from a persistent jar.
//  2. Keeps the access token fresh. An expired token is refreshed before the
//     request is sent, and a 401 triggers one refresh followed by exactly one
//     retry. Refreshes are single-flight: concurrent callers share one
//     network call and its result.
//  3. Exposes the auth endpoints (Login, Logout) and the probes used to tell
//     a dead server from a dead network (Ping, CheckConnectivity, Describe).
//
// # Error Handling
//
// Failures are reported with the sentinels of package common, matched with
// errors.Is: ErrUnavailable for transport failures, ErrSessionExpired when
// the token could not be refreshed, ErrInvalidCredentials for a rejected
// login and ErrBackendRejected (via *BackendError) for any other non-2xx
// answer.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. All operations honor ctx.
package client
