// Package credentials persists the session token and the theme preference
// in the client's metadata table.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// Token returns the stored bearer token, or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.repo.Get(ctx, common.AuthTokenKey)
	return token, err
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.AuthTokenKey, token)
}

func (s *Store) ClearToken(ctx context.Context) error {
	return s.repo.Delete(ctx, common.AuthTokenKey)
}

// ThemeMode returns the stored preference, or "" when none is stored.
func (s *Store) ThemeMode(ctx context.Context) (string, error) {
	mode, _, err := s.repo.Get(ctx, common.ThemeModeKey)
	return mode, err
}

func (s *Store) SetThemeMode(ctx context.Context, mode string) error {
	return s.repo.Set(ctx, common.ThemeModeKey, mode)
}
