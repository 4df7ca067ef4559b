package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shindakun/campuslogin/internal/auth"
	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/logger"
	"github.com/shindakun/campuslogin/internal/storage"
	"github.com/shindakun/campuslogin/internal/version"
	"github.com/shindakun/campuslogin/internal/web/handlers"
	webmiddleware "github.com/shindakun/campuslogin/internal/web/middleware"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}

	cfg, err := config.LoadServer(configPath)
	if err != nil {
		bootLog := logger.New(config.Default().Logging, os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.WithComponent(logger.New(cfg.Logging, os.Stdout), "campusmock")
	log.Info().Str("version", version.GetFullVersion()).Msg("Starting campus login mock API")

	// Initialize database
	log.Info().Str("path", cfg.Server.DBPath).Msg("Initializing database")
	db, err := storage.InitDB(cfg.Server.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := auth.SeedAccounts(context.Background(), db, cfg.Server.Users); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed accounts")
	}
	if err := auth.SeedStudents(context.Background(), db, cfg.Server.Students); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed student records")
	}
	log.Info().
		Int("users", len(cfg.Server.Users)).
		Int("students", len(cfg.Server.Students)).
		Msg("Accounts seeded")

	tokens, err := auth.NewTokenService(db, cfg.Server.TokenCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	throttle := webmiddleware.NewThrottle(cfg.Server.RateLimit)
	h := handlers.New(db, tokens, handlers.NewMetrics(reg), logger.WithComponent(log, "http"))

	// HTTP server configuration
	srv := &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      otelhttp.NewHandler(h.Routes(cfg, throttle, reg), "campusmock"),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Forget idle throttle entries
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := throttle.Sweep(10 * time.Minute); n > 0 {
					log.Debug().Int("removed", n).Msg("Throttle entries swept")
				}
			}
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server starting on http://%s", cfg.GetAddr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Graceful shutdown
	<-ctx.Done()

	log.Info().Msg("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited successfully")
}
