// Package main is the entry point for the contactbook server.
//
// main's job is only to load configuration, create the top-level
// dependencies (logger, mailer) and start the application. All actual logic
// lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pwalczk/contactbook/internal/config"
	"github.com/pwalczk/contactbook/internal/mail"
	"github.com/pwalczk/contactbook/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load fails when JWT_SECRET is unset — the server refuses to start
	// rather than run with unsigned-in-practice session tokens.
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dbDir := filepath.Dir(cfg.DBPath); dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// Without SMTP settings, verification emails are logged instead of
	// sent — convenient for local development.
	var mailer mail.Mailer
	if cfg.SMTPHost != "" {
		smtp, err := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		if err != nil {
			logger.Error("failed to create SMTP mailer", slog.String("error", err.Error()))
			os.Exit(1)
		}
		mailer = smtp
	} else {
		logger.Warn("SMTP_HOST not set — verification emails will only be logged")
		mailer = &mail.LogMailer{Logger: logger}
	}

	srv, err := server.New(cfg, logger, mailer)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
