// Package common defines shared constants and sentinel errors used across
// the Cocoinbox server and client. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound   = errors.New("not found")
	ErrorUserExists = errors.New("user already exists")

	// Service-level errors.
	ErrorInternal             = errors.New("internal error")
	ErrorUnauthenticated      = errors.New("unauthenticated")
	ErrorInvalidCredentials   = errors.New("invalid email or password")
	ErrorValidation           = errors.New("validation error")
	ErrorDownloadLimitReached = errors.New("download limit reached")
	ErrorProviderUnavailable  = errors.New("mail provider unavailable")

	// Startup errors.
	ErrorConfiguration = errors.New("configuration error")

	// Token errors. Both collapse to an anonymous caller at the transport edge.
	ErrorInvalidToken = errors.New("invalid token")
	ErrorTokenExpired = errors.New("token expired")
)
