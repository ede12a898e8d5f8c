// Package services contains server-side business logic. This file implements
// AuthService, which registers users, verifies credentials and issues and
// revokes session-backed bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/auth"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

const emailTakenMessage = "The email has already been taken."

// RegisterInput is the body of POST /register.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,notblank,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=255,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginInput is the body of POST /login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is what a successful register or login hands back.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService provides authentication-related operations:
// - Register: create a user and its first session
// - Login: verify credentials and open a session
// - CurrentUser: resolve a bearer token to its user
// - Logout: revoke the session behind a token
type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	validator     *validation.Validator
	logger        logging.Logger
	jwtSecret     []byte
	tokenValidity time.Duration
	bcryptCost    int
	dummyHash     []byte
	now           func() time.Time
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// compared against when the email is unknown so both failure paths cost the same
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)

	return &AuthService{
		db:            db,
		repomanager:   m,
		validator:     validation.NewValidator(),
		logger:        logger.With("service", "auth"),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidity,
		bcryptCost:    cost,
		dummyHash:     dummy,
		now:           time.Now,
	}
}

// Register validates the input, stores the user with a bcrypt hash and
// opens the first session in the same transaction. A taken email is a
// validation failure, not an error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (validation.Result[*AuthResult], error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if errs := s.validator.Struct(in); errs != nil {
		return validation.Fail[*AuthResult](errs), nil
	}

	_, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return validation.Fail[*AuthResult](validation.Errors{"email": {emailTakenMessage}}), nil
	case !errors.Is(err, common.ErrorNotFound):
		return validation.Result[*AuthResult]{}, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return validation.Result[*AuthResult]{}, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}

	var token string
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Users(tx).Create(ctx, user); err != nil {
			return err
		}
		var err error
		token, err = s.openSession(ctx, tx, user.ID)
		return err
	})
	if err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, common.ErrorAlreadyExists) {
			return validation.Fail[*AuthResult](validation.Errors{"email": {emailTakenMessage}}), nil
		}
		return validation.Result[*AuthResult]{}, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return validation.Ok(&AuthResult{User: user, Token: token}), nil
}

// Login returns common.ErrorUnauthorized for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (validation.Result[*AuthResult], error) {
	in.Email = normalizeEmail(in.Email)

	if errs := s.validator.Struct(in); errs != nil {
		return validation.Fail[*AuthResult](errs), nil
	}

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
			return validation.Result[*AuthResult]{}, common.ErrorUnauthorized
		}
		return validation.Result[*AuthResult]{}, fmt.Errorf("error searching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(in.Password)); err != nil {
		return validation.Result[*AuthResult]{}, common.ErrorUnauthorized
	}

	token, err := s.openSession(ctx, s.db, user.ID)
	if err != nil {
		return validation.Result[*AuthResult]{}, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return validation.Ok(&AuthResult{User: user, Token: token}), nil
}

// CurrentUser resolves a bearer token. Missing, forged, expired and revoked
// tokens all yield common.ErrorUnauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Find(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}
	if session.UserID != claims.UserID() || session.Expired(s.now()) {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return user, nil
}

// Logout deletes the session behind token. A token that carries a valid
// signature is accepted even if it is expired or already revoked, so
// logging out twice succeeds. Unsigned or forged tokens are rejected.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return common.ErrorUnauthorized
	}

	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil && !errors.Is(err, common.ErrTokenExpired) {
		return common.ErrorUnauthorized
	}

	if err := s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}

	s.logger.Info(ctx, "user logged out", "user_id", claims.UserID())
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
}

func (s *AuthService) openSession(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	session := &models.Session{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if s.tokenValidity > 0 {
		exp := s.now().Add(s.tokenValidity)
		session.ExpiresAt = &exp
	}

	token, err := auth.GenerateToken(userID, session.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}

	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	return token, nil
}

// normalizeEmail is applied before both storing and looking up an email, so
// addresses differing only in case belong to the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
