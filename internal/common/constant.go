// Package common contains shared constants and sentinel errors used across
// MyDutch components.
package common

// AuthorizationHeaderName is the HTTP header that carries the bearer access
// token on authenticated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the Authorization header value.
const BearerPrefix = "Bearer "
