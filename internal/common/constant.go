// Package common contains constants and small helpers shared by the client
// packages.
package common

const (
	// AuthorizationHeader carries "Bearer <token>".
	AuthorizationHeader = "Authorization"

	// AuthTokenHeader carries the raw token; the backend accepts either header.
	AuthTokenHeader = "x-auth-token"

	// RequestIDHeader tags every outbound request for log correlation.
	RequestIDHeader = "X-Request-Id"

	// TokenKey is the local storage key of the persisted session token.
	TokenKey = "token"

	// LastUsernameKey remembers who signed in last, to prefill the login prompt.
	LastUsernameKey = "username"
)
