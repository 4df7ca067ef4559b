package handlers

import (
	"database/sql"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/shindakun/campuslogin/internal/auth"
	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/version"
	webmiddleware "github.com/shindakun/campuslogin/internal/web/middleware"
)

// Handlers holds dependencies for the mock API handlers
type Handlers struct {
	db       *sql.DB
	tokens   *auth.TokenService
	validate *validator.Validate
	metrics  *Metrics
	logger   zerolog.Logger
}

// New creates a new Handlers instance
func New(db *sql.DB, tokens *auth.TokenService, metrics *Metrics, logger zerolog.Logger) *Handlers {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{
		db:       db,
		tokens:   tokens,
		validate: validate,
		metrics:  metrics,
		logger:   logger,
	}
}

// Routes builds the API router
func (h *Handlers) Routes(cfg *config.Config, throttle *webmiddleware.Throttle, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	// Forwarding headers are client controlled unless a proxy sets them
	if cfg.Server.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(webmiddleware.LoggingMiddleware(h.logger))
	r.Use(webmiddleware.Recoverer(h.logger))
	r.Use(webmiddleware.SecurityHeaders(cfg.Server.Headers))
	r.Use(webmiddleware.MaxBytes(cfg.Server.MaxRequestBytes))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(webmiddleware.CORS(cfg.Server.AllowedOrigins))
		r.Use(throttle.Handler)

		r.Post("/login", h.Login)
		r.Post("/register", h.Register)

		// Protected routes (require a bearer token)
		r.Group(func(r chi.Router) {
			r.Use(webmiddleware.RequireToken(h.db, h.tokens, h.logger))
			r.Post("/logout", h.Logout)
			r.Get("/user", h.User)
		})
	})

	r.NotFound(webmiddleware.NotFound)
	r.MethodNotAllowed(webmiddleware.MethodNotAllowed)

	return r
}

// Health reports liveness and the running version
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	state := "ok"
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("health check: database unreachable")
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	webmiddleware.WriteJSON(w, status, map[string]string{
		"status":  state,
		"version": version.GetVersion(),
	})
}
