// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/handler"
	"github.com/sakif/inkwell/internal/metrics"
	"github.com/sakif/inkwell/internal/middleware"
	sqliteRepo "github.com/sakif/inkwell/internal/repository/sqlite"
	"github.com/sakif/inkwell/internal/security"
	"github.com/sakif/inkwell/internal/service"
	"github.com/sakif/inkwell/internal/web"
)

// Config holds server configuration.
// Using a struct for config (instead of individual parameters) makes it easy to:
// - Add new config options without changing function signatures
// - Pass config around as a single value
// - Load config from files/env vars in one place
type Config struct {
	Port          int
	DBPath        string // path to the SQLite database file
	SessionSecret string // HMAC key for signing session cookies (required)

	// GitHub OAuth is optional: leave these empty and the /auth/github/*
	// routes are simply not mounted.
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// githubEnabled reports whether the OAuth routes should be mounted.
func (c Config) githubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection and the rate limiter's background
// goroutine. Both are released during graceful shutdown in Start().
type Server struct {
	router  *chi.Mux
	config  Config
	logger  *slog.Logger
	db      *sqliteRepo.DB
	limiter *middleware.RateLimiter
}

// New creates a new Server with the given config.
//
// DEPENDENCY INJECTION & WIRING:
// This is where the entire dependency chain is assembled:
//  1. Open the database (sqlite.New) and wrap it in per-entity repositories
//  2. Build the shared infrastructure: renderer, sanitizer, metrics, tokens
//  3. Build the service layer on the repository interfaces
//  4. Build the handlers on the services
//  5. Wire handlers to routes with the right guard chain
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete sqlite.DB)
// - Handlers get services (not repositories or the DB)
//
// IMPORT ALIAS:
// We import repository/sqlite as `sqliteRepo` to avoid confusion with
// the sqlite driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET      /                      → front page: all posts, newest first
//	GET/POST /register              → registration form / create account
//	GET/POST /login                 → login form / authenticate
//	GET      /logout                → end the session
//	GET      /post/{id}             → one post with its comments
//	POST     /post/{id}             → submit a comment (logged-in users)
//	GET/POST /new-post              → create a post (admin)
//	GET/POST /edit-post/{id}        → edit a post (admin)
//	GET      /delete/{id}           → delete a post (admin)
//	GET      /about, /contact       → static pages
//	GET      /metrics               → Prometheus scrape endpoint
//	GET      /auth/github/...       → optional GitHub sign-in
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added:
//  1. RequestID — assigns unique ID to each request (for tracing)
//  2. RealIP — extracts real client IP from proxy headers
//  3. Metrics — counts and times every request
//  4. Logger — logs each request with timing info
//  5. Recoverer — catches panics and returns 500 instead of crashing
//  6. CurrentUser — resolves the session cookie into a user (never blocks)
//
// The admin guard (RequireAdmin) is NOT global — it wraps only the three
// post-mutation routes.
func (s *Server) setupRoutes() error {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	renderer, err := web.NewRenderer(s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()
	sanitizer := security.NewSanitizer()

	// One repository per entity, all sharing s.db's pool and joining any
	// transaction a service opens via s.db.InTx.
	users := sqliteRepo.NewUserRepo(s.db)
	posts := sqliteRepo.NewPostRepo(s.db)
	comments := sqliteRepo.NewCommentRepo(s.db)
	sessions := sqliteRepo.NewSessionRepo(s.db)

	authService := service.NewAuthService(users, sessions, s.db, passwords, tokens, s.logger)
	postService := service.NewPostService(posts, s.db, sanitizer, s.logger)
	commentService := service.NewCommentService(comments, posts, sanitizer, collector, s.logger)

	identity := auth.NewMiddleware(tokens, sessions, users, s.logger)
	s.limiter = middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(), s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, renderer, collector,
		s.logger, s.config.githubEnabled())
	postHandler := handler.NewPostHandler(postService, commentService, renderer, s.logger)
	pageHandler := handler.NewPageHandler(renderer, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(collector.Middleware)    // Prometheus request counter + histogram
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500
	s.router.Use(identity.CurrentUser)    // Resolves the session cookie; never blocks

	s.router.NotFound(pageHandler.HandleNotFound)

	// === Public Routes ===
	s.router.Get("/", postHandler.HandleIndex)
	s.router.Get("/post/{id}", postHandler.HandleShow)
	s.router.Post("/post/{id}", postHandler.HandleComment)
	s.router.Get("/about", pageHandler.HandleAbout)
	s.router.Get("/contact", pageHandler.HandleContact)

	// === Credential Routes ===
	// Rate limited per client IP: each POST costs a bcrypt comparison, and
	// unthrottled guessing would turn an offline attack into an online one.
	s.router.Group(func(r chi.Router) {
		r.Use(s.limiter.Limit)
		r.Get("/register", authHandler.ShowRegister)
		r.Post("/register", authHandler.HandleRegister)
		r.Get("/login", authHandler.ShowLogin)
		r.Post("/login", authHandler.HandleLogin)
	})
	s.router.Get("/logout", authHandler.HandleLogout)

	// === Admin Routes ===
	// The guard chain runs before the handlers: anonymous visitors and
	// non-admin members are redirected away with a flash, and the handler
	// never executes.
	s.router.Group(func(r chi.Router) {
		r.Use(identity.RequireUser)
		r.Use(identity.RequireAdmin)
		r.Get("/new-post", postHandler.HandleNewForm)
		r.Post("/new-post", postHandler.HandleCreate)
		r.Get("/edit-post/{id}", postHandler.HandleEditForm)
		r.Post("/edit-post/{id}", postHandler.HandleUpdate)
		r.Get("/delete/{id}", postHandler.HandleDelete)
	})

	// === GitHub OAuth (optional) ===
	if s.config.githubEnabled() {
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		oauthHandler := handler.NewOAuthHandler(github, authService, s.logger)
		s.router.Get("/auth/github/login", oauthHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", oauthHandler.HandleGitHubCallback)
	}

	// === Operations ===
	metrics.Mount(s.router, registry)

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Stop the rate limiter's cleanup goroutine
// 4. Close the database connection (flushes WAL, releases file lock)
//
// If we skip step 4, the database file might be left in an inconsistent state.
// The defers ensure this happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.limiter.Stop()

	// Create the HTTP server with sensible timeouts
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("github_oauth", s.config.githubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		// Server failed to start
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		// Received shutdown signal
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests that drive the full stack
// through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without running the HTTP listener.
// Used by tests; Start handles this itself.
func (s *Server) Close() error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.db.Close()
}
