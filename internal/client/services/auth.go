// Package services contains the client-side application services: the auth
// session, the task repository and the theme context. Each talks to the API
// through a Transport and keeps local state in the credential store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

// Transport is the subset of client.HTTPClient the services use.
type Transport interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// AuthSession tracks who is signed in. The token lives in the TokenStore;
// the resolved user is kept in memory.
type AuthSession struct {
	transport Transport
	tokens    TokenStore
	logger    logging.Logger

	mu   sync.RWMutex
	user *models.User
}

func NewAuthSession(t Transport, tokens TokenStore, logger logging.Logger) *AuthSession {
	return &AuthSession{transport: t, tokens: tokens, logger: logger.With("module", "auth_session")}
}

// Init restores the previous session, if any, by running CheckSession.
func (s *AuthSession) Init(ctx context.Context) error {
	_, err := s.CheckSession(ctx)
	return err
}

// CheckSession resolves the stored token to a user. A token the server
// rejects is cleared; any other failure keeps it for the next attempt.
// It returns nil, nil when nobody is signed in.
func (s *AuthSession) CheckSession(ctx context.Context) (*models.User, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		s.setUser(nil)
		return nil, nil
	}

	var user models.User
	if err := s.transport.Get(ctx, "/user", &user); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.logger.Info(ctx, "stored session rejected, clearing token")
			s.setUser(nil)
			if err := s.tokens.ClearToken(ctx); err != nil {
				return nil, fmt.Errorf("clear token: %w", err)
			}
			return nil, nil
		}
		return nil, err
	}

	s.setUser(&user)
	return &user, nil
}

// Register creates the account and signs in. Field errors come back as a
// failed Result; a passwords mismatch is caught before any request.
func (s *AuthSession) Register(ctx context.Context, req models.RegisterRequest) (validation.Result[*models.User], error) {
	if req.Password != req.PasswordConfirmation {
		return validation.Fail[*models.User](validation.Errors{
			"password": {"The password field confirmation does not match."},
		}), nil
	}
	req.Email = strings.TrimSpace(req.Email)
	return s.authenticate(ctx, "/register", req)
}

// Login signs in. Wrong credentials return an *client.APIError matching
// client.ErrUnauthorized.
func (s *AuthSession) Login(ctx context.Context, email, password string) (validation.Result[*models.User], error) {
	return s.authenticate(ctx, "/login", models.LoginRequest{Email: strings.TrimSpace(email), Password: password})
}

func (s *AuthSession) authenticate(ctx context.Context, path string, body any) (validation.Result[*models.User], error) {
	var resp models.AuthResponse
	if err := s.transport.Post(ctx, path, body, &resp); err != nil {
		if errs, ok := client.ValidationErrors(err); ok {
			return validation.Fail[*models.User](errs), nil
		}
		return validation.Result[*models.User]{}, err
	}

	if err := s.tokens.SetToken(ctx, resp.Token); err != nil {
		return validation.Result[*models.User]{}, fmt.Errorf("store token: %w", err)
	}

	s.setUser(&resp.User)
	return validation.Ok(&resp.User), nil
}

// Logout revokes the token on the server and always forgets it locally.
// A token the server no longer knows is not an error.
func (s *AuthSession) Logout(ctx context.Context) error {
	remoteErr := s.transport.Post(ctx, "/logout", nil, nil)
	if remoteErr != nil && errors.Is(remoteErr, client.ErrUnauthorized) {
		remoteErr = nil
	}
	if remoteErr != nil {
		s.logger.Warn(ctx, "server logout failed", "error", remoteErr)
	}

	s.setUser(nil)
	if err := s.tokens.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return remoteErr
}

func (s *AuthSession) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *AuthSession) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// Close drops the in-memory user. The stored token survives for the next run.
func (s *AuthSession) Close(context.Context) error {
	s.setUser(nil)
	return nil
}

func (s *AuthSession) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
