// Package tasks declares the server-side repository contract for tasks.
// Every operation is scoped by the owning user's id so that a task never
// leaks across accounts.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/server/models"
)

type Repository interface {
	// List returns the user's tasks ordered by creation time, then id.
	List(ctx context.Context, userID string) ([]*models.Task, error)

	// Create inserts the task and fills its timestamps.
	Create(ctx context.Context, task *models.Task) error

	// Get returns common.ErrorNotFound when the task does not exist or
	// belongs to someone else.
	Get(ctx context.Context, userID, id string) (*models.Task, error)

	// Update persists title, description and completed, refreshing updated_at.
	Update(ctx context.Context, task *models.Task) error

	// Delete returns common.ErrorNotFound when nothing was deleted.
	Delete(ctx context.Context, userID, id string) error
}
