// Package common contains shared constants and sentinel errors used across
// drawersync components.
package common

// AuthorizationHeaderName carries the bearer token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// RequestIDHeaderName and ClientIDHeaderName tag outbound requests so server
// logs can be correlated with a particular client.
const (
	RequestIDHeaderName = "X-Request-Id"
	ClientIDHeaderName  = "X-Client-Id"
)

// Well-known storage keys of the two synchronized documents. The same key is
// used in the local store and on the remote key-value backend.
const (
	ProfilesKey = "drawer.profiles.v1"
	DaysKey     = "drawer.days.v1"
)

// DefaultProfileID is the profile that always exists and can never be deleted.
const DefaultProfileID = "default"
