package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/credentials"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/client/services"
	"github.com/dmitrijs2005/gophtasks/internal/client/storage"
	"github.com/dmitrijs2005/gophtasks/internal/client/tasklist"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session *services.AuthSession
	theme   *services.ThemeContext
	tasks   *tasklist.Controller
	reader  *bufio.Reader
	out     io.Writer
}

// NewApp opens the local database at c.DatabasePath and wires the services
// against the API at c.ServerURL.
func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err, "path", c.DatabasePath)
		return nil, err
	}

	store := credentials.NewStore(metadata.NewSQLiteRepository(db))
	api := client.NewHTTPClient(c.ServerURL, store, c.RequestTimeout)

	a := newApp(c, logger, api, store, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, api services.Transport, store *credentials.Store, in *bufio.Reader, out io.Writer) *App {
	a := &App{config: c, logger: logger, reader: in, out: out}
	a.session = services.NewAuthSession(api, store, logger)
	a.theme = services.NewThemeContext(store, os.Getenv)
	a.tasks = tasklist.NewController(services.NewTaskRepository(api), tasklist.NotifierFunc(a.notice), logger)
	return a
}

// Run restores the previous session and serves the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	a.start(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) start(ctx context.Context) {
	if err := a.theme.Init(ctx); err != nil {
		a.logger.Warn(ctx, "load theme", "error", err)
	}

	user, err := a.session.CheckSession(ctx)
	switch {
	case errors.Is(err, client.ErrUnavailable):
		a.println("Could not reach the server. You can retry with \"login\".")
		return
	case err != nil:
		a.logger.Error(ctx, "session check failed", "error", err)
		a.println("Could not restore your session.")
		return
	case user == nil:
		a.println("Welcome! Type \"help\" to see the available commands.")
		return
	}

	a.println(fmt.Sprintf("Welcome back, %s.", user.Name))
	if err := a.tasks.Load(ctx); err == nil {
		a.printProgress()
	}
}

// Close releases the session, the theme and the local database.
func (a *App) Close(ctx context.Context) {
	_ = a.session.Close(ctx)
	_ = a.theme.Close(ctx)
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "close database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) status() string {
	if u := a.session.CurrentUser(); u != nil {
		return " (" + u.Name + ")"
	}
	return ""
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
