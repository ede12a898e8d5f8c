// Package metadata stores small client-side settings (the session token,
// the theme preference) as key/value rows in SQLite.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}
