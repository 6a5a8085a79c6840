package models

import "time"

// RefreshToken is one session record. Rows are never deleted: a consumed or
// logged-out session is marked revoked and kept.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	IsRevoked bool
}
