// Package server initializes and runs the task API server.
// It opens storage, applies migrations, wires the rate limiter and metrics,
// handles graceful shutdown and periodically purges expired sessions.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/server/config"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/memory"
	"github.com/dmitrijs2005/gophtasks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtasks/internal/server/rest"
	"github.com/dmitrijs2005/gophtasks/internal/server/services"
)

// MemoryDSN selects the in-memory repositories instead of PostgreSQL.
const MemoryDSN = "memory"

const sessionPurgeInterval = 10 * time.Minute

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	redis       *redis.Client
	authService *services.AuthService
	taskService *services.TaskService
	registry    *prometheus.Registry
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, manager, err := openStorage(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := manager.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "gophtasks"),
	)

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		authService: services.NewAuthService(db, manager, c, logger),
		taskService: services.NewTaskService(db, manager, logger),
		registry:    registry,
	}

	if c.RedisAddr != "" {
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	}

	return app, nil
}

// openStorage returns the database handle and the repository manager for dsn.
// The memory backend still gets a SQLite handle so transactions have
// something to begin and commit.
func openStorage(dsn string) (*sql.DB, repomanager.RepositoryManager, error) {
	if dsn == MemoryDSN {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, nil, err
		}
		return db, memory.NewInMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, repomanager.NewPostgresRepositoryManager(), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) routerConfig() rest.RouterConfig {
	cfg := rest.RouterConfig{
		Auth:           app.authService,
		Tasks:          app.taskService,
		Logger:         app.logger,
		Registry:       app.registry,
		RateLimit:      app.config.RateLimitPerMinute,
		AllowedOrigins: app.config.CORSAllowedOrigins,
		RequestTimeout: app.config.RequestTimeout,
		Health: []rest.HealthCheck{
			{Name: "database", Check: app.db.PingContext},
		},
	}

	if app.redis != nil {
		cfg.Counter = rest.NewRedisCounter(app.redis)
		cfg.Health = append(cfg.Health, rest.HealthCheck{
			Name: "redis",
			Check: func(ctx context.Context) error {
				return app.redis.Ping(ctx).Err()
			},
		})
	}

	return cfg
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewHTTPServer(app.config.HTTPAddr, rest.NewRouter(app.routerConfig()), app.logger, app.config.ShutdownTimeout)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeSessions deletes expired sessions until ctx is done. Tokens without
// an expiry leave nothing to purge, so the loop only runs when tokens expire.
func (app *App) purgeSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.authService.PurgeExpiredSessions(ctx)
			if err != nil {
				app.logger.Warn(ctx, "session purge failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions purged", "count", n)
			}
		}
	}
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	_ = app.db.Close()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.close()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.TokenValidity > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.purgeSessions(ctx)
		}()
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
}
