package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// HealthCheck pings one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// RouterConfig collects everything NewRouter wires together. Counter may be
// nil, which disables rate limiting.
type RouterConfig struct {
	Auth           AuthService
	Tasks          TaskService
	Logger         logging.Logger
	Registry       *prometheus.Registry
	Counter        Counter
	RateLimit      int
	AllowedOrigins []string
	RequestTimeout time.Duration
	Health         []HealthCheck
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger.With("module", "router")
	metrics := NewMetrics(cfg.Registry)
	h := NewHandlers(cfg.Auth, cfg.Tasks, cfg.Logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	}

	r.Get("/health", healthHandler(cfg.Health))
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if cfg.Counter != nil {
				r.Use(RateLimit(cfg.Counter, cfg.RateLimit, logger, metrics))
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(cfg.Auth, logger))

			r.Get("/user", h.CurrentUser)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.ListTasks)
				r.Post("/", h.CreateTask)
				r.Get("/{id}", h.GetTask)
				r.Put("/{id}", h.UpdateTask)
				r.Delete("/{id}", h.DeleteTask)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	})

	return r
}

func healthHandler(checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status":    "error",
					"component": c.Name,
					"message":   msgServiceUnavailable,
				})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
