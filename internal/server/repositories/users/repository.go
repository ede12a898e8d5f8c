// Package users declares the server-side repository contract for accounts
// and its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository persists users.
type Repository interface {
	// Create inserts user and fills its timestamps. A duplicate email yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByEmail returns common.ErrorNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID returns common.ErrorNotFound when the id is unknown.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
