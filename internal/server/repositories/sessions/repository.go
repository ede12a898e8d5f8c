// Package sessions declares the server-side repository contract for the
// sessions that back issued bearer tokens.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

// Repository stores, resolves and revokes sessions.
type Repository interface {
	// Create stores a new session row.
	Create(ctx context.Context, session *models.Session) error

	// Find looks a session up by id. Implementations return
	// common.ErrorNotFound when the session is absent (revoked or never issued).
	Find(ctx context.Context, id string) (*models.Session, error)

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired purges sessions whose expiry lies before now and reports
	// how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
