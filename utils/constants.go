// File: utils/constants.go
package utils

import "time"

// AuthSessionPrefix is the prefix used for Redis identity session keys.
const AuthSessionPrefix = "authSession:"

// AuthSessionEventsPrefix prefixes the pub/sub channel carrying session changes.
const AuthSessionEventsPrefix = "authSession:events:"

// DefaultAuthSessionTTL applies when no TTL is configured.
const DefaultAuthSessionTTL = 24 * time.Hour

// ContextUserKey is the gin context key holding the authenticated *models.User.
const ContextUserKey = "user"

// ContextSessionKey is the gin context key holding the identity session id.
const ContextSessionKey = "authSessionID"
