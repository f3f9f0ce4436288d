package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/contacts/api/internal/adapters/gravatar"
	"github.com/contacts/api/internal/adapters/handler/http"
	"github.com/contacts/api/internal/adapters/mail"
	"github.com/contacts/api/internal/adapters/repository/postgres"
	"github.com/contacts/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := postgres.Open(dbConnString())
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		logger.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	contactRepo := postgres.NewContactRepository(db)
	userRepo := postgres.NewUserRepository(db)

	mailSender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       os.Getenv("SMTP_PORT"),
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		From:       os.Getenv("SMTP_FROM"),
		AppBaseURL: os.Getenv("APP_BASE_URL"),
	})

	contactService := services.NewContactService(contactRepo)
	userService := services.NewUserService(userRepo, gravatar.NewResolver(), logger)
	authService := services.NewAuthService(userRepo, []byte(os.Getenv("JWT_SECRET")))

	handler := http.NewHandler(
		http.NewContactHandler(contactService),
		http.NewUserHandler(userService),
		http.NewAuthHandler(authService, userService, mailSender, logger),
		authService,
		userRepo,
	)

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8080"
	}
	server := &stdhttp.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
