// Package refreshtokens declares the server-side repository contract for
// managing refresh-token session records in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mydutch/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh
// tokens. Records are revoked in place, never deleted, so a consumed token can
// be told apart from one that never existed.
type Repository interface {
	// Create stores a new non-revoked refresh token for userID with an expiry
	// of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// FindActive looks up a refresh token by its token string and returns its
	// record only when the revoked flag is unset. Expiry is NOT filtered here;
	// the caller checks it against the clock. Revoked or absent tokens yield
	// common.ErrorNotFound.
	FindActive(ctx context.Context, token string) (*models.RefreshToken, error)

	// Revoke flips the revoked flag on the record with the given token string.
	// Revoking an already-revoked or absent token is not an error.
	Revoke(ctx context.Context, token string) error

	// RevokeAllForUser flips the revoked flag on every active record owned by
	// userID. Used for logout; succeeds even when zero records were active.
	RevokeAllForUser(ctx context.Context, userID string) error
}
