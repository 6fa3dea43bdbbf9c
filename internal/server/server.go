// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the full dependency chain (db → services →
// handlers → routes) is assembled in New, so main.go stays minimal and the
// whole server can be constructed in tests.
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

	"github.com/pwalczk/contactbook/internal/auth"
	"github.com/pwalczk/contactbook/internal/avatar"
	"github.com/pwalczk/contactbook/internal/config"
	"github.com/pwalczk/contactbook/internal/handler"
	"github.com/pwalczk/contactbook/internal/mail"
	"github.com/pwalczk/contactbook/internal/middleware"
	sqliteRepo "github.com/pwalczk/contactbook/internal/repository/sqlite"
	"github.com/pwalczk/contactbook/internal/service"
)

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires the full dependency graph from the given config.
//
// The token service is constructed here from the config's secret — config
// loading already guarantees the secret is present, and no other package
// reads the environment.
func New(cfg *config.Config, logger *slog.Logger, mailer mail.Mailer) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	avatars, err := avatar.New(cfg.UploadDir, cfg.AvatarDir, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating avatar pipeline: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	s.setupRoutes(tokens, avatars, mailer)

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order: RequestID → RealIP → Recoverer → request logging, then
// per-group authentication.
func (s *Server) setupRoutes(tokens *auth.TokenService, avatars *avatar.Pipeline, mailer mail.Mailer) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	passwords := auth.NewPasswordService()

	accountService := service.NewAccountService(
		s.db, passwords, tokens, mailer, avatars, s.config.BaseURL, s.logger)
	contactService := service.NewContactService(s.db, s.logger)

	accountHandler := handler.NewAccountHandler(accountService, s.config.AvatarMaxBytes, s.logger)
	contactHandler := handler.NewContactHandler(contactService, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db)

	// Processed avatars are served straight from the permanent directory.
	fileServer := http.FileServer(http.Dir(s.config.AvatarDir))
	s.router.Handle("/avatars/*", http.StripPrefix("/avatars/", fileServer))

	s.router.Route("/api/users", func(r chi.Router) {
		r.Post("/signup", accountHandler.HandleSignup)
		r.Post("/login", accountHandler.HandleLogin)
		r.Get("/verify/{token}", accountHandler.HandleVerifyToken)
		r.Post("/verify", accountHandler.HandleResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/logout", accountHandler.HandleLogout)
			r.Get("/current", accountHandler.HandleCurrent)
			r.Patch("/avatars", accountHandler.HandleAvatar)
		})
	})

	s.router.Route("/api/contacts", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", contactHandler.HandleList)
		r.Post("/", contactHandler.HandleCreate)
		r.Get("/{id}", contactHandler.HandleGet)
		r.Put("/{id}", contactHandler.HandleUpdate)
		r.Patch("/{id}/favorite", contactHandler.HandleFavorite)
		r.Delete("/{id}", contactHandler.HandleDelete)
	})
}

// Handler exposes the router, mainly for httptest-based tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
