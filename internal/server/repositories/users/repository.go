// Package users declares the repository contract for identity records.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/mydutch/internal/server/models"
)

// Repository defines persistence operations for users.
type Repository interface {
	// Create inserts a new user and returns it with the DB-assigned id and
	// timestamps. A duplicate email yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with the given email (exact, case-sensitive
	// match) or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// UpdateLastLogin records a successful login timestamp.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
