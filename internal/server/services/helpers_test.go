package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophtasks/internal/dbx"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/models"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// newTxDB returns a real *sql.DB so dbx.WithTx can begin and commit; the
// repositories under test ignore it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = 4
	return cfg
}

// faultyManager wraps the in-memory manager and lets a test break one
// repository method at a time.
type faultyManager struct {
	*memory.InMemoryRepositoryManager

	usersGetErr       error
	usersCreateErr    error
	sessionsFindErr   error
	sessionsCreateErr error
	sessionsDeleteErr error
	tasksErr          error
}

func newFaultyManager() *faultyManager {
	return &faultyManager{InMemoryRepositoryManager: memory.NewInMemoryRepositoryManager()}
}

func (m *faultyManager) Users(db dbx.DBTX) users.Repository {
	return &faultyUsers{Repository: m.InMemoryRepositoryManager.Users(db), m: m}
}

func (m *faultyManager) Sessions(db dbx.DBTX) sessions.Repository {
	return &faultySessions{Repository: m.InMemoryRepositoryManager.Sessions(db), m: m}
}

func (m *faultyManager) Tasks(db dbx.DBTX) tasks.Repository {
	return &faultyTasks{Repository: m.InMemoryRepositoryManager.Tasks(db), m: m}
}

type faultyUsers struct {
	users.Repository
	m *faultyManager
}

func (u *faultyUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if u.m.usersCreateErr != nil {
		return nil, u.m.usersCreateErr
	}
	return u.Repository.Create(ctx, user)
}

func (u *faultyUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if u.m.usersGetErr != nil {
		return nil, u.m.usersGetErr
	}
	return u.Repository.GetUserByEmail(ctx, email)
}

type faultySessions struct {
	sessions.Repository
	m *faultyManager
}

func (s *faultySessions) Create(ctx context.Context, session *models.Session) error {
	if s.m.sessionsCreateErr != nil {
		return s.m.sessionsCreateErr
	}
	return s.Repository.Create(ctx, session)
}

func (s *faultySessions) Find(ctx context.Context, id string) (*models.Session, error) {
	if s.m.sessionsFindErr != nil {
		return nil, s.m.sessionsFindErr
	}
	return s.Repository.Find(ctx, id)
}

func (s *faultySessions) Delete(ctx context.Context, id string) error {
	if s.m.sessionsDeleteErr != nil {
		return s.m.sessionsDeleteErr
	}
	return s.Repository.Delete(ctx, id)
}

type faultyTasks struct {
	tasks.Repository
	m *faultyManager
}

func (t *faultyTasks) List(ctx context.Context, userID string) ([]*models.Task, error) {
	if t.m.tasksErr != nil {
		return nil, t.m.tasksErr
	}
	return t.Repository.List(ctx, userID)
}

func (t *faultyTasks) Create(ctx context.Context, task *models.Task) error {
	if t.m.tasksErr != nil {
		return t.m.tasksErr
	}
	return t.Repository.Create(ctx, task)
}

func (t *faultyTasks) Update(ctx context.Context, task *models.Task) error {
	if t.m.tasksErr != nil {
		return t.m.tasksErr
	}
	return t.Repository.Update(ctx, task)
}

func (t *faultyTasks) Delete(ctx context.Context, userID, id string) error {
	if t.m.tasksErr != nil {
		return t.m.tasksErr
	}
	return t.Repository.Delete(ctx, userID, id)
}

func newAuthService(t *testing.T, m *faultyManager, cfg *config.Config) *AuthService {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	return NewAuthService(newTxDB(t), m, cfg, logging.NewNopLogger())
}

func newTaskService(t *testing.T, m *faultyManager) *TaskService {
	t.Helper()
	return NewTaskService(newTxDB(t), m, logging.NewNopLogger())
}

func register(t *testing.T, s *AuthService, name, email string) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	require.True(t, res.IsOk(), "register failed: %v", res.Errors())
	return res.Value()
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
