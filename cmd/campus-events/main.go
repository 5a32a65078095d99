// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/campus-events/internal/auth"
	"github.com/olegiv/campus-events/internal/cache"
	"github.com/olegiv/campus-events/internal/config"
	"github.com/olegiv/campus-events/internal/handler"
	"github.com/olegiv/campus-events/internal/handler/api"
	"github.com/olegiv/campus-events/internal/logging"
	"github.com/olegiv/campus-events/internal/middleware"
	"github.com/olegiv/campus-events/internal/scheduler"
	"github.com/olegiv/campus-events/internal/service"
	"github.com/olegiv/campus-events/internal/session"
	"github.com/olegiv/campus-events/internal/store"
	"github.com/olegiv/campus-events/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// pruneSchedule clears stale rate-limit and lockout entries.
const pruneSchedule = "*/10 * * * *"

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "campus-events - campus event discovery API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SESSION_SECRET        Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_STORE                 Storage backend: memory|sqlite (default: memory)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_DB_PATH               SQLite database path (default: ./data/campus.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_CATALOG_FILE          YAML event catalog used for seeding (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_REDIS_URL             Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_AUTO_CLOSE_PAST       Close events whose dated day has ended (default: false)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CAMPUS_PAST_EVENTS_SCHEDULE  Cron schedule for closing past events (default: @hourly)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Request-scoped attributes (request_id, path, user_id) are added by the context handler.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	logger := slog.New(logging.NewContextHandler(textHandler))
	slog.SetDefault(logger)

	ctx := context.Background()

	st, sessionManager, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("error closing store", "error", err)
		}
	}()

	if cfg.Seed {
		catalog := store.DefaultCatalog()
		if cfg.CatalogFile != "" {
			if catalog, err = store.LoadCatalog(cfg.CatalogFile); err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
		}
		if err := store.Seed(ctx, st, catalog); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	eventCache := cache.NewCache(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cfg.CacheTTL,
		CleanupInterval: time.Minute,
	})
	defer func() { _ = eventCache.Close() }()

	// Services
	events := service.NewEventService(st, eventCache, cfg.CacheTTL)
	registrations := service.NewRegistrationService(st, events)
	users := service.NewUserService(st, auth.DefaultParams)

	// Abuse protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	authRateLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit)
	slog.Info("login protection initialized",
		"auth_rate_limit_per_minute", cfg.AuthRateLimit,
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Scheduled jobs
	sched := scheduler.New(logger)
	if cfg.AutoClosePast {
		if err := sched.Add(scheduler.PastEventsJob(events, cfg.PastEventsSchedule)); err != nil {
			return fmt.Errorf("scheduling past events job: %w", err)
		}
	}
	if err := sched.Add(scheduler.PruneJob(pruneSchedule, loginProtection.Prune, authRateLimiter.Prune)); err != nil {
		return fmt.Errorf("scheduling prune job: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Config{
		Events:          events,
		Registrations:   registrations,
		Users:           users,
		Store:           st,
		Sessions:        sessionManager,
		LoginProtection: loginProtection,
		AuthRateLimiter: authRateLimiter,
	})

	dataDir := ""
	if cfg.UseSQLite() {
		dataDir = filepath.Dir(cfg.DBPath)
	}
	healthHandler := handler.NewHealthHandler(handler.HealthConfig{
		Store:    st,
		Cache:    eventCache,
		Sessions: sessionManager,
		DataDir:  dataDir,
		Version:  versionInfo,
	})

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestPath)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	slog.Info("security headers middleware initialized", "hsts", !cfg.IsDevelopment())

	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())))
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, users))

	// Health check routes (public, returns additional details for signed-in callers)
	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Mount("/api", apiHandler.Routes())

	for _, job := range sched.List() {
		slog.Info("scheduled job", "name", job.Name, "schedule", job.Schedule, "next_run", job.NextRun)
	}

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Mitigates slowloris
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "store", cfg.Store, "version", versionInfo.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openStore opens the configured store and a session manager persisting
// alongside it.
func openStore(cfg *config.Config) (store.Store, *scs.SessionManager, error) {
	if !cfg.UseSQLite() {
		slog.Info("using in-memory store; data is lost on restart")
		return store.NewMemory(), session.NewMemory(cfg.IsDevelopment()), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	sqliteStore := store.NewSQLite(db)
	return sqliteStore, session.NewSQLite(sqliteStore.DB(), cfg.IsDevelopment()), nil
}
