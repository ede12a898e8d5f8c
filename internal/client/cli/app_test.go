package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	clientconfig "github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/credentials"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/client/storage"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophtasks/internal/server/rest"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = 4

	logger := logging.NewNopLogger()
	m := memory.NewInMemoryRepositoryManager()

	srv := httptest.NewServer(rest.NewRouter(rest.RouterConfig{
		Auth:           services.NewAuthService(db, m, cfg, logger),
		Tasks:          services.NewTaskService(db, m, logger),
		Logger:         logger,
		Registry:       prometheus.NewRegistry(),
		AllowedOrigins: []string{"*"},
		RequestTimeout: 5 * time.Second,
	}))
	t.Cleanup(srv.Close)
	return srv
}

// stubPasswords answers password prompts from pw in order.
func stubPasswords(t *testing.T, pw ...string) {
	t.Helper()
	var mu sync.Mutex
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(pw) == 0 {
			return nil, io.EOF
		}
		p := pw[0]
		pw = pw[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

type testApp struct {
	*App
	store *credentials.Store
	out   *bytes.Buffer
}

// newTestApp builds an App talking to baseURL that reads its commands from
// input. REPL and command output both land in out.
func newTestApp(t *testing.T, baseURL, input string) *testApp {
	t.Helper()
	t.Setenv("TASKS_THEME", "light")

	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := credentials.NewStore(metadata.NewSQLiteRepository(db))
	api := client.NewHTTPClient(baseURL, store, 5*time.Second)

	out := &bytes.Buffer{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(out, a...) }
	t.Cleanup(func() { printlnFn = orig })

	cfg := &clientconfig.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = baseURL

	a := newApp(cfg, logging.NewNopLogger(), api, store, bufio.NewReader(strings.NewReader(input)), out)
	return &testApp{App: a, store: store, out: out}
}

func script(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestApp_FullSession(t *testing.T) {
	srv := startServer(t)
	stubPasswords(t, "password123", "password123")

	a := newTestApp(t, srv.URL+"/api", script(
		"register", "Ana", "ana@example.com",
		"add", "Buy milk", "2 litres",
		"add", "Walk dog", "",
		"list",
		"toggle 1",
		"filter completed",
		"filter all",
		"edit 2", "Walk the dog", "",
		"delete 1", "y",
		"list",
		"whoami",
		"logout",
		"list",
		"exit",
	))
	a.Run(context.Background())

	out := a.out.String()
	assert.Contains(t, out, "Welcome! Type \"help\"")
	assert.Contains(t, out, "Welcome, Ana! Your account is ready.")
	assert.Equal(t, 2, strings.Count(out, "Task created."))
	assert.Contains(t, out, "  1. [ ] Buy milk")
	assert.Contains(t, out, "       2 litres")
	assert.Contains(t, out, "  2. [ ] Walk dog")
	assert.Contains(t, out, "1 of 2 completed (50%) [all]")
	assert.Contains(t, out, "1 of 2 completed (50%) [completed]")
	assert.Contains(t, out, "  1. [x] Buy milk")
	assert.Contains(t, out, "Task updated.")
	assert.Contains(t, out, "Task deleted.")
	assert.Contains(t, out, "  1. [ ] Walk the dog")
	assert.Contains(t, out, "0 of 1 completed (0%) [all]")
	assert.Contains(t, out, "Ana <ana@example.com>")
	assert.Contains(t, out, "You have been logged out.")
	assert.Contains(t, out, "Please log in first.")
	assert.Contains(t, out, "Bye!")

	token, err := a.store.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestApp_RestoresStoredSession(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "password123")
	first := newTestApp(t, srv.URL+"/api", script("register", "Ana", "ana@example.com", "add", "Buy milk", "", "exit"))
	first.Run(ctx)
	token, err := first.store.Token(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second := newTestApp(t, srv.URL+"/api", script("exit"))
	require.NoError(t, second.store.SetToken(ctx, token))
	second.start(ctx)

	assert.True(t, second.isLoggedIn())
	assert.Equal(t, " (Ana)", second.status())
	assert.Contains(t, second.out.String(), "Welcome back, Ana.")
	assert.Contains(t, second.out.String(), "0 of 1 completed (0%) [all]")
}

func TestApp_RejectedStoredTokenIsCleared(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	a := newTestApp(t, srv.URL+"/api", "")
	require.NoError(t, a.store.SetToken(ctx, "not-a-token"))
	a.start(ctx)

	assert.False(t, a.isLoggedIn())
	token, err := a.store.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Contains(t, a.out.String(), "Welcome! Type \"help\"")
}

func TestApp_ServerDownKeepsToken(t *testing.T) {
	srv := startServer(t)
	url := srv.URL + "/api"
	srv.Close()
	ctx := context.Background()

	a := newTestApp(t, url, "")
	require.NoError(t, a.store.SetToken(ctx, "stored"))
	a.start(ctx)

	assert.False(t, a.isLoggedIn())
	token, err := a.store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stored", token)
	assert.Contains(t, a.out.String(), "Could not reach the server.")
}

func TestApp_RegisterErrors(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "different1")
	a := newTestApp(t, srv.URL+"/api", script("Ana", "ana@example.com"))
	err := a.Register(ctx)
	assert.Error(t, err)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, a.out.String(), "Please correct the following:")
	assert.Contains(t, a.out.String(), "  password: The password field confirmation does not match.")

	stubPasswords(t, "short", "short")
	b := newTestApp(t, srv.URL+"/api", script("", "not-an-email"))
	assert.Error(t, b.Register(ctx))
	out := b.out.String()
	assert.Contains(t, out, "  email:")
	assert.Contains(t, out, "  name:")
	assert.Contains(t, out, "  password:")
}

func TestApp_LoginWrongPassword(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "password123", "wrong-password")
	a := newTestApp(t, srv.URL+"/api", script("Ana", "ana@example.com", "ana@example.com"))
	require.NoError(t, a.Register(ctx))
	require.NoError(t, a.Logout(ctx))

	err := a.Login(ctx)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, a.out.String(), "The provided credentials are incorrect.")
}

func TestApp_DeleteCancelled(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "password123")
	a := newTestApp(t, srv.URL+"/api", script("Ana", "ana@example.com", "Buy milk", "", "n"))
	require.NoError(t, a.Register(ctx))
	require.NoError(t, a.Add(ctx))

	require.NoError(t, a.Delete(ctx, "1"))
	assert.Contains(t, a.out.String(), "Cancelled.")
	assert.Len(t, a.tasks.Tasks(), 1)
	assert.Equal(t, "", a.tasks.PendingDelete())
}

func TestApp_TaskReferences(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "password123")
	a := newTestApp(t, srv.URL+"/api", script("Ana", "ana@example.com", "   ", ""))
	require.NoError(t, a.Register(ctx))

	assert.ErrorIs(t, a.Toggle(ctx, ""), errNoTask)
	assert.ErrorIs(t, a.Toggle(ctx, "7"), errNoTask)
	assert.ErrorIs(t, a.Toggle(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV"), errNoTask)
	assert.Contains(t, a.out.String(), "No task \"7\".")

	// blank title never reaches the server
	assert.Error(t, a.Add(ctx))
	assert.Contains(t, a.out.String(), "The title field is required.")
	assert.Empty(t, a.tasks.Tasks())
}

func TestApp_ExpiredSessionDuringCommand(t *testing.T) {
	srv := startServer(t)
	ctx := context.Background()

	stubPasswords(t, "password123", "password123")
	a := newTestApp(t, srv.URL+"/api", script("Ana", "ana@example.com"))
	require.NoError(t, a.Register(ctx))

	// another device signs out with the same token
	require.NoError(t, a.store.SetToken(ctx, "revoked"))

	assert.Error(t, a.Refresh(ctx))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, a.out.String(), "Your session has expired. Please log in again.")
}

func TestApp_Theme(t *testing.T) {
	a := newTestApp(t, "http://127.0.0.1:1/api", "")
	ctx := context.Background()
	require.NoError(t, a.theme.Init(ctx))

	require.NoError(t, a.Theme(ctx, ""))
	assert.Contains(t, a.out.String(), "Theme: system (light)")

	require.NoError(t, a.Theme(ctx, "dark"))
	assert.Contains(t, a.out.String(), "\033[92mTheme set to dark.\033[0m")

	mode, err := a.store.ThemeMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", mode)

	assert.Error(t, a.Theme(ctx, "sepia"))
	assert.Contains(t, a.out.String(), "\033[91munknown theme")
}
