package common

import "time"

const (
	// AuthorizationHeaderName is the HTTP header and gRPC metadata key carrying the session token.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix is stripped from the authorization value before verification.
	BearerPrefix = "Bearer "

	// SessionTokenLifetime is fixed; tokens are never refreshed or revoked.
	SessionTokenLifetime = 24 * time.Hour

	// MailboxLifetime is how long an ephemeral mailbox stays active.
	MailboxLifetime = 24 * time.Hour

	// DefaultRole is assigned to every newly registered user.
	DefaultRole = "user"
)
