package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/contacts/api/internal/adapters/mail"
	"github.com/contacts/api/internal/adapters/repository/postgres"
	"github.com/contacts/api/internal/core/services"
)

// One-shot job meant to run daily from cron: mails every user a digest of
// their contacts with a birthday in the coming week.
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := postgres.Open(dbConnString())
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	contactRepo := postgres.NewContactRepository(db)

	mailSender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       os.Getenv("SMTP_PORT"),
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		From:       os.Getenv("SMTP_FROM"),
		AppBaseURL: os.Getenv("APP_BASE_URL"),
	})

	reminder := services.NewReminderService(userRepo, contactRepo, mailSender, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("Starting birthday digest job...")

	if err := reminder.SendBirthdayDigests(ctx); err != nil {
		logger.Error("birthday digest job failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Birthday digest job completed successfully.")
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
