package models

import "time"

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGithub AuthProvider = "github"
)

// User is the identity record. PasswordHash is set if and only if
// AuthProvider is AuthProviderEmail; OAuth accounts carry ProviderID instead.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	FullName     *string
	AuthProvider AuthProvider
	ProviderID   *string
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}
